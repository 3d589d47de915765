// internal/domain/review/repository_port.go
package review

import "context"

// Repository is the relational persistence port for the Review aggregate.
//
// Storage recommendation (PostgreSQL):
// - reviews / review_images / review_image_tooltips / review_keywords
// - Create inserts the whole aggregate inside one transaction; images keep
//   their temp URLs at that point (media_status = PENDING).
// - The blob migration that follows is NOT part of that transaction; the
//   workflow is a sequential saga with compensation, not a distributed tx.
type Repository interface {
	// Create persists the aggregate (images + keywords cascade) in one
	// transaction and returns the stored review.
	Create(ctx context.Context, rv Review) (Review, error)

	// GetByID returns ErrNotFound (errors.Is(common.ErrNotFound)) when absent.
	GetByID(ctx context.Context, id string) (Review, error)

	// UpdateImageURL rewrites one image's URL in place after its blob has
	// been copied to the permanent namespace.
	UpdateImageURL(ctx context.Context, reviewID, imageID, url string) error

	// MarkMediaReady flips media_status to READY once every image URL points
	// at the permanent namespace.
	MarkMediaReady(ctx context.Context, reviewID string) error
}
