// internal/application/usecase/reviewQuery_usecase.go
package usecase

import (
	"context"

	revdom "tablenote/internal/domain/review"
)

// ReviewQueryUsecase はコミット済みレビューの読み取りです。
// media_status が PENDING のものも返す（読み手側で temp URL と区別できる）。
type ReviewQueryUsecase struct {
	reviews revdom.Repository
}

func NewReviewQueryUsecase(reviews revdom.Repository) *ReviewQueryUsecase {
	return &ReviewQueryUsecase{reviews: reviews}
}

func (uc *ReviewQueryUsecase) GetByID(ctx context.Context, id string) (revdom.Review, error) {
	return uc.reviews.GetByID(ctx, id)
}
