// internal/adapters/in/http/handlers/review_handler.go
package handlers

import (
	"net/http"
	"strings"

	uc "tablenote/internal/application/usecase"
	revdom "tablenote/internal/domain/review"
)

// ReviewHandler は /reviews 関連のエンドポイントを担当します。
//
//   - POST /reviews        （ステージ済み画像のコミット）
//   - GET  /reviews/{id}
type ReviewHandler struct {
	createUC *uc.CreateReviewUsecase
	queryUC  *uc.ReviewQueryUsecase
}

func NewReviewHandler(createUC *uc.CreateReviewUsecase, queryUC *uc.ReviewQueryUsecase) http.Handler {
	return &ReviewHandler{createUC: createUC, queryUC: queryUC}
}

func (h *ReviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/reviews":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.create(w, r)
	case strings.HasPrefix(path, "/reviews/"):
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.get(w, r, strings.TrimPrefix(path, "/reviews/"))
	default:
		notFound(w)
	}
}

// POST /reviews
func (h *ReviewHandler) create(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var sub revdom.Submission
	if err := readJSON(r, &sub); err != nil {
		writeErr(w, err)
		return
	}

	res, err := h.createUC.Create(r.Context(), uid, sub)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GET /reviews/{id}
func (h *ReviewHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rv, err := h.queryUC.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}
