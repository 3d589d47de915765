// internal/domain/reviewImage/storage_port.go
package reviewImage

import "context"

// ObjectStoragePort is the blob-store port used by the staging/commit workflow.
//
// ✅ Single bucket policy:
// - bucket: tablenote-review-images (public via uniform IAM)
// - temp:      temp/{userId}/{restaurantId}/{imageId}.{ext}
// - permanent: restaurants/{restaurantId}/reviews/{reviewId}/{imageId}.{ext}
//
// NOTE:
// - UploadTemp validates size/type/extension before touching storage.
// - Delete is best-effort at the call sites: failures are logged, never fatal.
type ObjectStoragePort interface {
	// UploadTemp stores the file under the temp namespace with public-read
	// visibility and returns its descriptor.
	UploadTemp(ctx context.Context, userID, restaurantID, fileName, contentType string, data []byte) (UploadedImage, error)

	// Copy performs a server-side copy preserving visibility.
	Copy(ctx context.Context, srcKey, destKey string) error

	// Delete removes one object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the deterministic public URL for an object key.
	PublicURL(objectPath string) string
}
