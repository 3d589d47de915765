// internal/adapters/in/http/handlers/reviewImage_handler.go
package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	uc "tablenote/internal/application/usecase"
	"tablenote/internal/domain/common"
	sessdom "tablenote/internal/domain/imageSession"
)

// ReviewImageHandler は /reviews/images 関連（投稿前の画像ステージング）を担当します。
//
//   - POST   /reviews/images              multipart: restaurantId, kind?, files...
//   - GET    /reviews/images?restaurantId=...
//   - DELETE /reviews/images?restaurantId=...            （セッション全クリア）
//   - DELETE /reviews/images/{imageId}?restaurantId=...  （1枚削除）
type ReviewImageHandler struct {
	uc *uc.ImageSessionUsecase
}

func NewReviewImageHandler(sessionUC *uc.ImageSessionUsecase) http.Handler {
	return &ReviewImageHandler{uc: sessionUC}
}

// maxUploadBytes bounds the whole multipart body, not individual files
// (per-file limits are enforced by the domain validation).
const maxUploadBytes = 64 << 20

func (h *ReviewImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/reviews/images":
		switch r.Method {
		case http.MethodPost:
			h.upload(w, r)
		case http.MethodGet:
			h.snapshot(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			methodNotAllowed(w)
		}
	case strings.HasPrefix(path, "/reviews/images/"):
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		imageID := strings.TrimPrefix(path, "/reviews/images/")
		h.remove(w, r, imageID)
	default:
		notFound(w)
	}
}

// POST /reviews/images
func (h *ReviewImageHandler) upload(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErr(w, common.Validationf("invalid multipart body: %v", err))
		return
	}

	owner, err := sessdom.NewOwnerKey(uid, r.FormValue("restaurantId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	kind, err := sessdom.ParseKind(r.FormValue("kind"))
	if err != nil {
		writeErr(w, err)
		return
	}

	fhs := r.MultipartForm.File["files"]
	if len(fhs) == 0 {
		writeErr(w, common.Validationf("no files in field %q", "files"))
		return
	}

	files := make([]uc.UploadFile, 0, len(fhs))
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			writeErr(w, common.Validationf("cannot open file %q: %v", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeErr(w, common.Validationf("cannot read file %q: %v", fh.Filename, err))
			return
		}
		files = append(files, uc.UploadFile{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	uploaded, sess, err := h.uc.Upload(r.Context(), owner, kind, files)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"uploaded": uploaded,
		"session":  toSessionResponse(sess),
	})
}

// GET /reviews/images?restaurantId=...
func (h *ReviewImageHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUserID(w, r)
	if !ok {
		return
	}
	owner, err := sessdom.NewOwnerKey(uid, r.URL.Query().Get("restaurantId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	sess, err := h.uc.Snapshot(r.Context(), owner)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// DELETE /reviews/images?restaurantId=...
func (h *ReviewImageHandler) clear(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUserID(w, r)
	if !ok {
		return
	}
	owner, err := sessdom.NewOwnerKey(uid, r.URL.Query().Get("restaurantId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.uc.Clear(r.Context(), owner); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /reviews/images/{imageId}?restaurantId=...
func (h *ReviewImageHandler) remove(w http.ResponseWriter, r *http.Request, imageID string) {
	uid, ok := requireUserID(w, r)
	if !ok {
		return
	}
	owner, err := sessdom.NewOwnerKey(uid, r.URL.Query().Get("restaurantId"))
	if err != nil {
		writeErr(w, err)
		return
	}
	sess, err := h.uc.RemoveImage(r.Context(), owner, imageID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// sessionResponse はセッションの公開ビュー（Owner をフラット化）。
type sessionResponse struct {
	UserID       string                    `json:"userId"`
	RestaurantID string                    `json:"restaurantId"`
	Kind         string                    `json:"kind"`
	MaxImages    int                       `json:"maxImages"`
	Images       []sessdom.ImageDescriptor `json:"images"`
	ExpiresAt    time.Time                 `json:"expiresAt"`
}

func toSessionResponse(s *sessdom.Session) sessionResponse {
	if s == nil {
		return sessionResponse{Images: []sessdom.ImageDescriptor{}}
	}
	images := s.Images
	if images == nil {
		images = []sessdom.ImageDescriptor{}
	}
	return sessionResponse{
		UserID:       s.Owner.UserID,
		RestaurantID: s.Owner.RestaurantID,
		Kind:         string(s.Kind),
		MaxImages:    s.Kind.MaxImages(),
		Images:       images,
		ExpiresAt:    s.ExpiresAt,
	}
}
