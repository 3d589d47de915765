// internal/application/usecase/reviewCreate_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"tablenote/internal/domain/common"
	sessdom "tablenote/internal/domain/imageSession"
	"tablenote/internal/domain/keyword"
	restdom "tablenote/internal/domain/restaurant"
	revdom "tablenote/internal/domain/review"
	imgdom "tablenote/internal/domain/reviewImage"
)

// DefaultMigrationTimeout bounds the whole MIGRATING phase.
const DefaultMigrationTimeout = 60 * time.Second

// CreateReviewResult is returned to the client on COMMITTED.
type CreateReviewResult struct {
	ReviewID     string `json:"reviewId"`
	RestaurantID string `json:"restaurantId"`
}

// CreateReviewUsecase is the commit orchestrator: it turns "N staged temp
// images + tooltip metadata" into one persisted review with permanent URLs.
//
// State machine per submission:
//
//	VALIDATING -> PERSISTING -> MIGRATING -> { COMMITTED | COMPENSATING -> FAILED }
//
// The relational persist commits on its own; blob migration is NOT part of
// that transaction. On a migration failure the already-migrated prefix is
// deleted (compensation), temp objects and the session are left untouched,
// and a retryable error surfaces so the client can resubmit without
// re-uploading.
type CreateReviewUsecase struct {
	restaurants restdom.Reader
	sessions    sessdom.Repository
	reviews     revdom.Repository
	storage     imgdom.ObjectStoragePort

	migrationTimeout time.Duration
	now              func() time.Time
	newID            func() string
}

func NewCreateReviewUsecase(
	restaurants restdom.Reader,
	sessions sessdom.Repository,
	reviews revdom.Repository,
	storage imgdom.ObjectStoragePort,
	migrationTimeout time.Duration,
) *CreateReviewUsecase {
	if migrationTimeout <= 0 {
		migrationTimeout = DefaultMigrationTimeout
	}
	return &CreateReviewUsecase{
		restaurants:      restaurants,
		sessions:         sessions,
		reviews:          reviews,
		storage:          storage,
		migrationTimeout: migrationTimeout,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

// Create runs the full saga for one submission.
func (uc *CreateReviewUsecase) Create(ctx context.Context, userID string, sub revdom.Submission) (CreateReviewResult, error) {
	// ── VALIDATING ──────────────────────────────────────────────
	if err := revdom.ValidateSubmission(sub); err != nil {
		return CreateReviewResult{}, err
	}
	keywords, err := keyword.ParseAll(sub.Keywords)
	if err != nil {
		return CreateReviewResult{}, err
	}

	rest, err := uc.restaurants.FindByID(ctx, sub.RestaurantID)
	if err != nil {
		return CreateReviewResult{}, err
	}

	owner, err := sessdom.NewOwnerKey(userID, rest.ID)
	if err != nil {
		return CreateReviewResult{}, err
	}
	sess, err := uc.sessions.Get(ctx, owner)
	if err != nil {
		return CreateReviewResult{}, common.External("get session", err)
	}
	if err := revdom.ValidateAgainstSession(sub, sess); err != nil {
		return CreateReviewResult{}, err
	}

	// ── PERSISTING ──────────────────────────────────────────────
	// Images are inserted with their session temp URLs and media_status
	// PENDING; URLs are rewritten in place as each blob migrates.
	rv := revdom.Review{
		ID:           uc.newID(),
		AuthorID:     owner.UserID,
		RestaurantID: rest.ID,
		Content:      strings.TrimSpace(sub.Content),
		MediaStatus:  revdom.MediaPending,
		Keywords:     keywords,
		CreatedAt:    uc.now(),
	}
	for _, req := range sub.Images {
		desc, _ := sess.Find(req.ImageID)
		rv.Images = append(rv.Images, revdom.ReviewImage{
			ID:       desc.ImageID,
			URL:      desc.URL,
			Order:    req.Order,
			IsMain:   req.IsMain,
			Tooltips: req.Tooltips,
		})
	}
	if rv, err = uc.reviews.Create(ctx, rv); err != nil {
		// Transaction rollback: nothing persisted, temp objects and session
		// remain for retry.
		return CreateReviewResult{}, fmt.Errorf("persist review: %w", err)
	}

	// ── MIGRATING ───────────────────────────────────────────────
	if err := uc.migrate(ctx, rest.ID, rv.ID, sub, sess); err != nil {
		return CreateReviewResult{}, err
	}

	// ── COMMITTED ───────────────────────────────────────────────
	if err := uc.reviews.MarkMediaReady(ctx, rv.ID); err != nil {
		// URLs are already permanent; only the status flag is stale.
		log.Printf("[review.create] WARN: mark media ready failed review=%s: %v", rv.ID, err)
	}
	for _, d := range sess.Images {
		if derr := uc.storage.Delete(ctx, d.TempKey); derr != nil {
			log.Printf("[review.create] WARN: temp delete failed key=%s: %v", d.TempKey, derr)
		}
	}
	if err := uc.sessions.Delete(ctx, owner); err != nil {
		log.Printf("[review.create] WARN: session delete failed owner=%s: %v", owner.DocID(), err)
	}

	return CreateReviewResult{ReviewID: rv.ID, RestaurantID: rest.ID}, nil
}

// migrate copies each blob to its permanent key strictly in submission order,
// so the "migrated" list is always a deterministic prefix of the submission.
// On the first failure it compensates by deleting that prefix and raises a
// retryable error; temp objects and the session are left untouched.
func (uc *CreateReviewUsecase) migrate(
	ctx context.Context,
	restaurantID, reviewID string,
	sub revdom.Submission,
	sess *sessdom.Session,
) error {
	// Compensation must still run if the migration deadline itself fired.
	cleanupCtx := context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, uc.migrationTimeout)
	defer cancel()

	var migrated []string
	for _, req := range sub.Images {
		desc, _ := sess.Find(req.ImageID)
		ext := strings.TrimPrefix(path.Ext(desc.TempKey), ".")
		destKey := imgdom.BuildPermanentKey(restaurantID, reviewID, desc.ImageID, ext)

		if err := uc.storage.Copy(ctx, desc.TempKey, destKey); err != nil {
			uc.compensate(cleanupCtx, migrated)
			return common.External(fmt.Sprintf("migrate image %s", desc.ImageID), err)
		}
		migrated = append(migrated, destKey)

		if err := uc.reviews.UpdateImageURL(ctx, reviewID, desc.ImageID, uc.storage.PublicURL(destKey)); err != nil {
			uc.compensate(cleanupCtx, migrated)
			return common.External(fmt.Sprintf("rewrite url for image %s", desc.ImageID), err)
		}
	}
	return nil
}

// compensate best-effort deletes every destination object already migrated.
// Individual delete failures are logged, never raised: cleanup must not mask
// the primary outcome.
func (uc *CreateReviewUsecase) compensate(ctx context.Context, migrated []string) {
	for _, key := range migrated {
		if err := uc.storage.Delete(ctx, key); err != nil {
			log.Printf("[review.create] WARN: compensation delete failed key=%s: %v", key, err)
		}
	}
}
