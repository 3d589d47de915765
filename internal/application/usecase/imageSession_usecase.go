// internal/application/usecase/imageSession_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"tablenote/internal/domain/common"
	sessdom "tablenote/internal/domain/imageSession"
	imgdom "tablenote/internal/domain/reviewImage"
)

// UploadFile is one incoming multipart file.
type UploadFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ImageSessionUsecase はレビュー投稿前の画像ステージングを扱います。
// blob ストアへの temp アップロードとセッション追記を 1 操作に見せ、
// セッション側で弾かれた場合は作ったばかりの temp オブジェクトを
// 削除して補償します。
type ImageSessionUsecase struct {
	sessions sessdom.Repository
	storage  imgdom.ObjectStoragePort
	now      func() time.Time
}

func NewImageSessionUsecase(sessions sessdom.Repository, storage imgdom.ObjectStoragePort) *ImageSessionUsecase {
	return &ImageSessionUsecase{
		sessions: sessions,
		storage:  storage,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload stages the files one by one:
// temp upload -> session TryAdd -> session save.
//
// On a cap rejection the fresh temp object is deleted (compensation at this
// layer) and ErrTooManyImages surfaces; files already staged in this call
// stay in the session, mirroring per-file tryAddImage semantics.
func (uc *ImageSessionUsecase) Upload(
	ctx context.Context,
	owner sessdom.OwnerKey,
	kind sessdom.Kind,
	files []UploadFile,
) ([]imgdom.UploadedImage, *sessdom.Session, error) {
	if len(files) == 0 {
		return nil, nil, common.Validationf("imageSession: no files")
	}

	sess, err := uc.loadOrCreate(ctx, owner, kind)
	if err != nil {
		return nil, nil, err
	}

	uploaded := make([]imgdom.UploadedImage, 0, len(files))
	for _, f := range files {
		up, err := uc.storage.UploadTemp(ctx, owner.UserID, owner.RestaurantID, f.FileName, f.ContentType, f.Data)
		if err != nil {
			if errors.Is(err, common.ErrValidation) {
				return uploaded, sess, err
			}
			return uploaded, sess, common.External("upload temp object", err)
		}

		if err := sess.TryAdd(sessdom.ImageDescriptor{
			ImageID:       up.ImageID,
			TempKey:       up.TempKey,
			URL:           up.URL,
			FileSizeBytes: up.FileSizeBytes,
		}, uc.now()); err != nil {
			// 上限で弾かれた temp オブジェクトは孤児になるので即削除する。
			if derr := uc.storage.Delete(ctx, up.TempKey); derr != nil {
				log.Printf("[imageSession.upload] WARN: orphan temp delete failed key=%s: %v", up.TempKey, derr)
			}
			return uploaded, sess, err
		}

		if err := uc.sessions.Save(ctx, sess); err != nil {
			return uploaded, sess, common.External("save session", err)
		}
		uploaded = append(uploaded, up)
	}
	return uploaded, sess, nil
}

// Snapshot returns the current session (an empty one if none is stored).
// Reads slide the TTL at the repository layer.
func (uc *ImageSessionUsecase) Snapshot(ctx context.Context, owner sessdom.OwnerKey) (*sessdom.Session, error) {
	sess, err := uc.sessions.Get(ctx, owner)
	if err != nil {
		return nil, common.External("get session", err)
	}
	if sess == nil {
		sess = sessdom.NewSession(owner, sessdom.KindReview, uc.now())
	}
	return sess, nil
}

// RemoveImage drops one staged image, re-packs orders to a dense 1..N
// sequence, persists, and best-effort deletes the orphaned temp object.
func (uc *ImageSessionUsecase) RemoveImage(ctx context.Context, owner sessdom.OwnerKey, imageID string) (*sessdom.Session, error) {
	sess, err := uc.sessions.Get(ctx, owner)
	if err != nil {
		return nil, common.External("get session", err)
	}
	if sess == nil {
		return nil, sessdom.ErrNotFound
	}

	removed, err := sess.Remove(imageID, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, sess); err != nil {
		return nil, common.External("save session", err)
	}

	if derr := uc.storage.Delete(ctx, removed.TempKey); derr != nil {
		log.Printf("[imageSession.remove] WARN: temp delete failed key=%s: %v", removed.TempKey, derr)
	}
	return sess, nil
}

// Clear deletes the whole session and best-effort deletes its temp objects.
// Clearing an absent or already-empty session is not an error (idempotent).
func (uc *ImageSessionUsecase) Clear(ctx context.Context, owner sessdom.OwnerKey) error {
	sess, err := uc.sessions.Get(ctx, owner)
	if err != nil {
		return common.External("get session", err)
	}
	if sess == nil {
		return nil
	}

	for _, d := range sess.Images {
		if derr := uc.storage.Delete(ctx, d.TempKey); derr != nil {
			log.Printf("[imageSession.clear] WARN: temp delete failed key=%s: %v", d.TempKey, derr)
		}
	}
	if err := uc.sessions.Delete(ctx, owner); err != nil {
		return common.External("delete session", err)
	}
	return nil
}

func (uc *ImageSessionUsecase) loadOrCreate(ctx context.Context, owner sessdom.OwnerKey, kind sessdom.Kind) (*sessdom.Session, error) {
	sess, err := uc.sessions.Get(ctx, owner)
	if err != nil {
		return nil, common.External("get session", err)
	}
	if sess == nil {
		sess = sessdom.NewSession(owner, kind, uc.now())
	}
	return sess, nil
}
