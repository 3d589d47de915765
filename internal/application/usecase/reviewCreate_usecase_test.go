package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"tablenote/internal/domain/common"
	sessdom "tablenote/internal/domain/imageSession"
	revdom "tablenote/internal/domain/review"
)

type createFixture struct {
	sessions *fakeSessionRepo
	storage  *fakeStorage
	reviews  *fakeReviewRepo
	uc       *CreateReviewUsecase
	owner    sessdom.OwnerKey
}

// newCreateFixture stages n images for user-1 at rest-1.
func newCreateFixture(t *testing.T, n int) *createFixture {
	t.Helper()

	sessions := newFakeSessionRepo()
	storage := newFakeStorage()
	reviews := newFakeReviewRepo()

	uc := NewCreateReviewUsecase(newFakeRestaurants("rest-1"), sessions, reviews, storage, 0)
	uc.newID = func() string { return "rev-1" }

	owner, err := sessdom.NewOwnerKey("user-1", "rest-1")
	if err != nil {
		t.Fatalf("owner key: %v", err)
	}

	now := time.Now().UTC()
	kind := sessdom.KindReview
	if n > kind.MaxImages() {
		kind = sessdom.KindMenu
	}
	sess := sessdom.NewSession(owner, kind, now)
	for i := 1; i <= n; i++ {
		up, err := storage.UploadTemp(context.Background(),
			"user-1", "rest-1", fmt.Sprintf("photo-%d.jpg", i), "image/jpeg", []byte("jpeg"))
		if err != nil {
			t.Fatalf("stage %d: %v", i, err)
		}
		if err := sess.TryAdd(sessdom.ImageDescriptor{
			ImageID:       up.ImageID,
			TempKey:       up.TempKey,
			URL:           up.URL,
			FileSizeBytes: up.FileSizeBytes,
		}, now); err != nil {
			t.Fatalf("stage %d: %v", i, err)
		}
	}
	if err := sessions.Save(context.Background(), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}

	return &createFixture{
		sessions: sessions,
		storage:  storage,
		reviews:  reviews,
		uc:       uc,
		owner:    owner,
	}
}

func submissionFor(n int) revdom.Submission {
	sub := revdom.Submission{
		RestaurantID: "rest-1",
		Content:      "excellent dinner",
		Keywords:     []string{"TASTY", "COZY"},
	}
	for i := 1; i <= n; i++ {
		sub.Images = append(sub.Images, revdom.ImageRequest{
			ImageID: fmt.Sprintf("img-%d", i),
			Order:   i,
			IsMain:  i == 1,
		})
	}
	return sub
}

func TestCreateCommitsStagedImages(t *testing.T) {
	f := newCreateFixture(t, 2)

	res, err := f.uc.Create(context.Background(), "user-1", submissionFor(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.ReviewID != "rev-1" || res.RestaurantID != "rest-1" {
		t.Fatalf("result = %+v", res)
	}

	rv, err := f.reviews.GetByID(context.Background(), "rev-1")
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if rv.MediaStatus != revdom.MediaReady {
		t.Fatalf("mediaStatus = %s, want READY", rv.MediaStatus)
	}
	if len(rv.Images) != 2 {
		t.Fatalf("images = %d", len(rv.Images))
	}
	for _, img := range rv.Images {
		if !strings.Contains(img.URL, "/restaurants/rest-1/reviews/rev-1/") {
			t.Fatalf("image %s kept non-permanent url %q", img.ID, img.URL)
		}
	}

	// temp objects gone, permanent objects present
	for i := 1; i <= 2; i++ {
		tempKey := fmt.Sprintf("temp/user-1/rest-1/img-%d.jpg", i)
		permKey := fmt.Sprintf("restaurants/rest-1/reviews/rev-1/img-%d.jpg", i)
		if f.storage.has(tempKey) {
			t.Fatalf("temp object %s survived commit", tempKey)
		}
		if !f.storage.has(permKey) {
			t.Fatalf("permanent object %s missing", permKey)
		}
	}

	// session consumed
	if s, _ := f.sessions.Get(context.Background(), f.owner); s != nil {
		t.Fatal("session survived commit")
	}
}

func TestCreateCompensatesMigratedPrefixOnCopyFailure(t *testing.T) {
	f := newCreateFixture(t, 5)
	f.storage.failCopyAt = 3 // images 1 and 2 migrate, 3 blows up

	_, err := f.uc.Create(context.Background(), "user-1", submissionFor(5))
	if err == nil {
		t.Fatal("expected error")
	}
	if !common.IsRetryable(err) {
		t.Fatalf("migration failure must be retryable, got %v", err)
	}

	// review row stays, still PENDING
	rv, gerr := f.reviews.GetByID(context.Background(), "rev-1")
	if gerr != nil {
		t.Fatalf("review row must survive: %v", gerr)
	}
	if rv.MediaStatus != revdom.MediaPending {
		t.Fatalf("mediaStatus = %s, want PENDING", rv.MediaStatus)
	}

	// the migrated prefix (dest objects 1 and 2) is deleted
	for i := 1; i <= 2; i++ {
		permKey := fmt.Sprintf("restaurants/rest-1/reviews/rev-1/img-%d.jpg", i)
		if f.storage.has(permKey) {
			t.Fatalf("dest object %s not compensated", permKey)
		}
	}

	// every temp object and the session are untouched
	for i := 1; i <= 5; i++ {
		tempKey := fmt.Sprintf("temp/user-1/rest-1/img-%d.jpg", i)
		if !f.storage.has(tempKey) {
			t.Fatalf("temp object %s lost", tempKey)
		}
	}
	if s, _ := f.sessions.Get(context.Background(), f.owner); s == nil || len(s.Images) != 5 {
		t.Fatal("session must survive a failed commit")
	}
}

func TestCreateRetrySucceedsAfterCompensation(t *testing.T) {
	f := newCreateFixture(t, 3)
	f.storage.failCopyAt = 2

	if _, err := f.uc.Create(context.Background(), "user-1", submissionFor(3)); err == nil {
		t.Fatal("expected first attempt to fail")
	}

	f.storage.failCopyAt = 0
	f.uc.newID = func() string { return "rev-2" }

	res, err := f.uc.Create(context.Background(), "user-1", submissionFor(3))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	rv, err := f.reviews.GetByID(context.Background(), res.ReviewID)
	if err != nil {
		t.Fatalf("get retried review: %v", err)
	}
	if rv.MediaStatus != revdom.MediaReady {
		t.Fatalf("mediaStatus = %s, want READY", rv.MediaStatus)
	}
}

func TestCreateCompensatesOnURLRewriteFailure(t *testing.T) {
	f := newCreateFixture(t, 3)
	f.reviews.failUpdateAt = 2 // copy 2 succeeds, url rewrite 2 fails

	_, err := f.uc.Create(context.Background(), "user-1", submissionFor(3))
	if !common.IsRetryable(err) {
		t.Fatalf("got %v, want retryable", err)
	}

	// both copied dest objects (1 and 2) must be compensated
	for i := 1; i <= 2; i++ {
		permKey := fmt.Sprintf("restaurants/rest-1/reviews/rev-1/img-%d.jpg", i)
		if f.storage.has(permKey) {
			t.Fatalf("dest object %s not compensated", permKey)
		}
	}
}

func TestCreateFailsFastBeforePersist(t *testing.T) {
	t.Run("unknown image id", func(t *testing.T) {
		f := newCreateFixture(t, 2)
		sub := submissionFor(2)
		sub.Images[1].ImageID = "img-missing"

		_, err := f.uc.Create(context.Background(), "user-1", sub)
		if !errors.Is(err, sessdom.ErrImageNotFound) {
			t.Fatalf("got %v, want ErrImageNotFound", err)
		}
		if len(f.reviews.created) != 0 {
			t.Fatal("relational write happened before validation finished")
		}
		if f.storage.copyCalls != 0 {
			t.Fatal("blob migration started before validation finished")
		}
	})

	t.Run("restaurant not found", func(t *testing.T) {
		f := newCreateFixture(t, 1)
		sub := submissionFor(1)
		sub.RestaurantID = "rest-unknown"

		_, err := f.uc.Create(context.Background(), "user-1", sub)
		if !errors.Is(err, common.ErrNotFound) {
			t.Fatalf("got %v, want not found", err)
		}
		if len(f.reviews.created) != 0 {
			t.Fatal("relational write happened for unknown restaurant")
		}
	})

	t.Run("no session", func(t *testing.T) {
		f := newCreateFixture(t, 1)
		if err := f.sessions.Delete(context.Background(), f.owner); err != nil {
			t.Fatalf("seed: %v", err)
		}

		_, err := f.uc.Create(context.Background(), "user-1", submissionFor(1))
		if !errors.Is(err, sessdom.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown keyword", func(t *testing.T) {
		f := newCreateFixture(t, 1)
		sub := submissionFor(1)
		sub.Keywords = []string{"SPICY"}

		_, err := f.uc.Create(context.Background(), "user-1", sub)
		if !errors.Is(err, common.ErrValidation) {
			t.Fatalf("got %v, want validation error", err)
		}
	})
}

func TestCreateKeepsCommitWhenCleanupFails(t *testing.T) {
	f := newCreateFixture(t, 1)
	f.storage.failDeleteAt = 1 // temp cleanup fails after COMMITTED

	res, err := f.uc.Create(context.Background(), "user-1", submissionFor(1))
	if err != nil {
		t.Fatalf("cleanup failure must not fail the commit: %v", err)
	}
	rv, err := f.reviews.GetByID(context.Background(), res.ReviewID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if rv.MediaStatus != revdom.MediaReady {
		t.Fatalf("mediaStatus = %s, want READY", rv.MediaStatus)
	}
}
