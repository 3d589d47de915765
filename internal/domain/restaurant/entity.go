// internal/domain/restaurant/entity.go
package restaurant

import (
	"context"
	"time"

	"tablenote/internal/domain/common"
)

// ErrNotFound は対象レストラン不在。
var ErrNotFound = common.NotFoundf("restaurant: not found")

// Restaurant はレビュー対象の店舗です。
// CRUD は本コアの対象外のため、読み取りポートのみを持ちます。
type Restaurant struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}

// Reader is the lookup collaborator consumed by the review workflow.
type Reader interface {
	// FindByID returns ErrNotFound (via errors.Is(common.ErrNotFound)) when absent.
	FindByID(ctx context.Context, id string) (Restaurant, error)
}
