package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tablenote/internal/domain/common"
	sessdom "tablenote/internal/domain/imageSession"
)

func uploadFixture(t *testing.T) (*ImageSessionUsecase, *fakeSessionRepo, *fakeStorage, sessdom.OwnerKey) {
	t.Helper()
	sessions := newFakeSessionRepo()
	storage := newFakeStorage()
	owner, err := sessdom.NewOwnerKey("user-1", "rest-1")
	if err != nil {
		t.Fatalf("owner key: %v", err)
	}
	return NewImageSessionUsecase(sessions, storage), sessions, storage, owner
}

func jpeg(name string) UploadFile {
	return UploadFile{FileName: name, ContentType: "image/jpeg", Data: []byte("jpeg")}
}

func TestUploadStagesFilesInOrder(t *testing.T) {
	uc, sessions, storage, owner := uploadFixture(t)

	uploaded, sess, err := uc.Upload(context.Background(), owner, sessdom.KindReview,
		[]UploadFile{jpeg("a.jpg"), jpeg("b.jpg")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(uploaded) != 2 {
		t.Fatalf("uploaded = %d", len(uploaded))
	}
	for i, d := range sess.Images {
		if d.Order != i+1 {
			t.Fatalf("image %d order = %d", i, d.Order)
		}
		if !storage.has(d.TempKey) {
			t.Fatalf("temp object %s missing", d.TempKey)
		}
	}

	stored, err := sessions.Get(context.Background(), owner)
	if err != nil || stored == nil || len(stored.Images) != 2 {
		t.Fatalf("session not persisted: %v %+v", err, stored)
	}
}

func TestUploadRejectsOverCapAndDeletesOrphan(t *testing.T) {
	uc, _, storage, owner := uploadFixture(t)

	files := make([]UploadFile, 0, 5)
	for i := 0; i < 5; i++ {
		files = append(files, jpeg(fmt.Sprintf("f%d.jpg", i)))
	}
	if _, _, err := uc.Upload(context.Background(), owner, sessdom.KindReview, files); err != nil {
		t.Fatalf("fill to cap: %v", err)
	}

	uploaded, sess, err := uc.Upload(context.Background(), owner, sessdom.KindReview,
		[]UploadFile{jpeg("extra.jpg")})
	if !errors.Is(err, sessdom.ErrTooManyImages) {
		t.Fatalf("got %v, want ErrTooManyImages", err)
	}
	if len(uploaded) != 0 {
		t.Fatalf("rejected upload reported as staged: %v", uploaded)
	}
	if len(sess.Images) != 5 {
		t.Fatalf("session grew past cap: %d", len(sess.Images))
	}
	// the orphaned temp object of the rejected file must be deleted
	if storage.has("temp/user-1/rest-1/img-6.jpg") {
		t.Fatal("orphan temp object survived cap rejection")
	}
}

func TestUploadValidationPassesThrough(t *testing.T) {
	uc, sessions, _, owner := uploadFixture(t)

	_, _, err := uc.Upload(context.Background(), owner, sessdom.KindReview,
		[]UploadFile{{FileName: "doc.pdf", ContentType: "application/pdf", Data: []byte("x")}})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	if s, _ := sessions.Get(context.Background(), owner); s != nil {
		t.Fatal("session created for rejected upload")
	}
}

func TestRemoveImageRenumbersAndDeletesTemp(t *testing.T) {
	uc, _, storage, owner := uploadFixture(t)

	if _, _, err := uc.Upload(context.Background(), owner, sessdom.KindReview,
		[]UploadFile{jpeg("a.jpg"), jpeg("b.jpg"), jpeg("c.jpg")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sess, err := uc.RemoveImage(context.Background(), owner, "img-2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	wantIDs := []string{"img-1", "img-3"}
	for i, d := range sess.Images {
		if d.ImageID != wantIDs[i] || d.Order != i+1 {
			t.Fatalf("pos %d: %s order=%d", i, d.ImageID, d.Order)
		}
	}
	if storage.has("temp/user-1/rest-1/img-2.jpg") {
		t.Fatal("removed image's temp object survived")
	}

	if _, err := uc.RemoveImage(context.Background(), owner, "img-2"); !errors.Is(err, sessdom.ErrImageNotFound) {
		t.Fatalf("second remove: got %v", err)
	}
}

func TestRemoveImageWithoutSession(t *testing.T) {
	uc, _, _, owner := uploadFixture(t)
	if _, err := uc.RemoveImage(context.Background(), owner, "img-1"); !errors.Is(err, sessdom.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	uc, sessions, storage, owner := uploadFixture(t)

	// clearing an absent session is fine
	if err := uc.Clear(context.Background(), owner); err != nil {
		t.Fatalf("clear absent: %v", err)
	}

	if _, _, err := uc.Upload(context.Background(), owner, sessdom.KindReview,
		[]UploadFile{jpeg("a.jpg"), jpeg("b.jpg")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := uc.Clear(context.Background(), owner); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s, _ := sessions.Get(context.Background(), owner); s != nil {
		t.Fatal("session survived clear")
	}
	if storage.has("temp/user-1/rest-1/img-1.jpg") || storage.has("temp/user-1/rest-1/img-2.jpg") {
		t.Fatal("temp objects survived clear")
	}

	// and clearing again is still fine
	if err := uc.Clear(context.Background(), owner); err != nil {
		t.Fatalf("clear twice: %v", err)
	}
}

func TestSnapshotReturnsEmptySessionWhenAbsent(t *testing.T) {
	uc, _, _, owner := uploadFixture(t)
	sess, err := uc.Snapshot(context.Background(), owner)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if sess == nil || !sess.IsEmpty() {
		t.Fatalf("want empty session, got %+v", sess)
	}
}
