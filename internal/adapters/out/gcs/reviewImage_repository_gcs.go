// internal/adapters/out/gcs/reviewImage_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	imgdom "tablenote/internal/domain/reviewImage"
)

// ReviewImageRepositoryGCS is the GCS adapter for review images (object storage).
//
// ✅ Recommended layout (single bucket):
// - bucket: tablenote-review-images
// - temp:      temp/{userId}/{restaurantId}/{imageId}.{ext}
// - permanent: restaurants/{restaurantId}/reviews/{reviewId}/{imageId}.{ext}
//
// Public access:
//   - If the bucket has IAM "allUsers: Storage Object Viewer" (uniform access),
//     uploaded objects become publicly readable without per-object ACL changes.
type ReviewImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

func NewReviewImageRepositoryGCS(client *storage.Client, bucket string) *ReviewImageRepositoryGCS {
	b := strings.TrimSpace(bucket)
	if b == "" {
		b = imgdom.DefaultBucket
	}
	return &ReviewImageRepositoryGCS{
		Client:        client,
		Bucket:        b,
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

func (r *ReviewImageRepositoryGCS) bucket() (*storage.BucketHandle, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("reviewImage_repository_gcs: storage client is nil")
	}
	b := strings.TrimSpace(r.Bucket)
	if b == "" {
		return nil, errors.New("reviewImage_repository_gcs: bucket is empty")
	}
	return r.Client.Bucket(b), nil
}

// UploadTemp validates the file and stores it under the temp namespace.
// imageId is a fresh random id; the returned URL is the deterministic public URL.
func (r *ReviewImageRepositoryGCS) UploadTemp(
	ctx context.Context,
	userID, restaurantID, fileName, contentType string,
	data []byte,
) (imgdom.UploadedImage, error) {
	if err := imgdom.ValidateUpload(data, contentType, fileName); err != nil {
		return imgdom.UploadedImage{}, err
	}
	bh, err := r.bucket()
	if err != nil {
		return imgdom.UploadedImage{}, err
	}

	imageID := uuid.NewString()
	tempKey := imgdom.BuildTempKey(userID, restaurantID, imageID, imgdom.Extension(fileName))

	w := bh.Object(tempKey).NewWriter(ctx)
	w.ContentType = strings.TrimSpace(contentType)
	// Safety: avoid writer hanging forever.
	w.ChunkSize = 0
	w.Metadata = map[string]string{
		"uploadedAt":   time.Now().UTC().Format(time.RFC3339),
		"uploadedBy":   strings.TrimSpace(userID),
		"restaurantId": strings.TrimSpace(restaurantID),
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return imgdom.UploadedImage{}, fmt.Errorf("reviewImage_repository_gcs: write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return imgdom.UploadedImage{}, fmt.Errorf("reviewImage_repository_gcs: close failed: %w", err)
	}

	return imgdom.UploadedImage{
		ImageID:       imageID,
		TempKey:       tempKey,
		URL:           r.PublicURL(tempKey),
		FileSizeBytes: int64(len(data)),
	}, nil
}

// Copy performs a server-side copy (visibility follows the bucket's uniform IAM).
func (r *ReviewImageRepositoryGCS) Copy(ctx context.Context, srcKey, destKey string) error {
	bh, err := r.bucket()
	if err != nil {
		return err
	}
	src := strings.TrimSpace(srcKey)
	dst := strings.TrimSpace(destKey)
	if src == "" || dst == "" {
		return errors.New("reviewImage_repository_gcs: copy key is empty")
	}
	if _, err := bh.Object(dst).CopierFrom(bh.Object(src)).Run(ctx); err != nil {
		return fmt.Errorf("reviewImage_repository_gcs: copy %s -> %s: %w", src, dst, err)
	}
	return nil
}

// Delete removes one object. Missing objects are not an error.
func (r *ReviewImageRepositoryGCS) Delete(ctx context.Context, key string) error {
	bh, err := r.bucket()
	if err != nil {
		return err
	}
	obj := strings.TrimSpace(key)
	if obj == "" {
		return nil
	}
	if err := bh.Object(obj).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("reviewImage_repository_gcs: delete %s: %w", obj, err)
	}
	return nil
}

// PublicURL returns a public URL for the object.
// Works when the bucket is publicly readable (uniform access via IAM).
func (r *ReviewImageRepositoryGCS) PublicURL(objectPath string) string {
	base := strings.TrimSpace(r.PublicBaseURL)
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(base, "/"),
		strings.TrimSpace(r.Bucket),
		strings.TrimLeft(strings.TrimSpace(objectPath), "/"),
	)
}
