// internal/domain/reviewImage/entity.go
package reviewImage

import (
	"path"
	"strings"

	"tablenote/internal/domain/common"
)

// ✅ 1-bucket 運用（public bucket を想定）
const DefaultBucket = "tablenote-review-images"

// 公開URLのベース（GCS の一般的な形式）
const PublicBaseURL = "https://storage.googleapis.com/"

// アップロード制限。
const (
	MaxFileSizeBytes = 5 << 20 // 5 MiB
)

var (
	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
	allowedExtensions = map[string]struct{}{
		"jpg":  {},
		"jpeg": {},
		"png":  {},
	}
)

// UploadedImage is the descriptor returned by a successful temp upload.
// tempKey lives under the "temp/" namespace until the review is committed.
type UploadedImage struct {
	ImageID       string
	TempKey       string
	URL           string
	FileSizeBytes int64
}

// ValidateUpload checks the structural upload rules before any storage call.
// - non-empty body
// - size <= MaxFileSizeBytes
// - contentType in {image/jpeg, image/png}
// - fileName carries an allow-listed extension
func ValidateUpload(data []byte, contentType, fileName string) error {
	if len(data) == 0 {
		return common.Validationf("reviewImage: empty file")
	}
	if int64(len(data)) > MaxFileSizeBytes {
		return common.Validationf("reviewImage: file exceeds %d bytes", MaxFileSizeBytes)
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := allowedContentTypes[ct]; !ok {
		return common.Validationf("reviewImage: unsupported content type %q", contentType)
	}
	if _, ok := allowedExtensions[Extension(fileName)]; !ok {
		return common.Validationf("reviewImage: unsupported file extension %q", fileName)
	}
	return nil
}

// Extension returns the lower-cased extension without the dot ("" if none).
func Extension(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(sanitizeFileName(fileName)), "."))
	return ext
}

// BuildTempKey returns temp/{userId}/{restaurantId}/{imageId}.{ext}
func BuildTempKey(userID, restaurantID, imageID, ext string) string {
	return "temp/" + strings.TrimSpace(userID) + "/" + strings.TrimSpace(restaurantID) +
		"/" + strings.TrimSpace(imageID) + "." + strings.TrimSpace(ext)
}

// BuildPermanentKey returns restaurants/{restaurantId}/reviews/{reviewId}/{imageId}.{ext}
func BuildPermanentKey(restaurantID, reviewID, imageID, ext string) string {
	return "restaurants/" + strings.TrimSpace(restaurantID) +
		"/reviews/" + strings.TrimSpace(reviewID) +
		"/" + strings.TrimSpace(imageID) + "." + strings.TrimSpace(ext)
}

// PublicURL returns https://storage.googleapis.com/<bucket>/<objectPath>
// (valid if the bucket/object is publicly readable)
func PublicURL(bucket, objectPath string) string {
	b := strings.TrimSpace(bucket)
	if b == "" {
		b = DefaultBucket
	}
	return PublicBaseURL + b + "/" + strings.TrimLeft(strings.TrimSpace(objectPath), "/")
}

// sanitizeFileName removes any path fragments and trims.
func sanitizeFileName(s string) string {
	v := strings.TrimSpace(s)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "\\", "/")
	if i := strings.LastIndex(v, "/"); i >= 0 {
		v = v[i+1:]
	}
	v = strings.TrimSpace(v)
	if v == "" || v == "." || v == ".." {
		return ""
	}
	return v
}
