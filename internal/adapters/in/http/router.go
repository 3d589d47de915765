// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"tablenote/internal/adapters/in/http/handlers"
	"tablenote/internal/adapters/in/http/middleware"
	usecase "tablenote/internal/application/usecase"
)

// RouterDeps collects all usecases (and other dependencies) injected from main.go.
type RouterDeps struct {
	ImageSessionUC *usecase.ImageSessionUsecase
	CreateReviewUC *usecase.CreateReviewUsecase
	ReviewQueryUC  *usecase.ReviewQueryUsecase

	// UserAuth が nil の場合は認証なしでマウントする（ローカル開発・テスト用）。
	UserAuth *middleware.UserAuthMiddleware
}

// NewRouter sets up HTTP routing for all endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	guard := func(h http.Handler) http.Handler {
		if deps.UserAuth != nil {
			return deps.UserAuth.Handler(h)
		}
		return h
	}

	// 以降、Usecase が存在するものだけマウントする
	if deps.ImageSessionUC != nil {
		ih := guard(handlers.NewReviewImageHandler(deps.ImageSessionUC))
		mux.Handle("/reviews/images", ih)
		mux.Handle("/reviews/images/", ih)
	}

	if deps.CreateReviewUC != nil && deps.ReviewQueryUC != nil {
		rh := handlers.NewReviewHandler(deps.CreateReviewUC, deps.ReviewQueryUC)
		// POST /reviews は要認証、GET /reviews/{id} は公開
		mux.Handle("/reviews", guard(rh))
		mux.Handle("/reviews/", rh)
	}

	return mux
}
