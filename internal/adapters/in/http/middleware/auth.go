// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient は firebase auth クライアントのエイリアス。
// RouterDeps などからは *middleware.FirebaseAuthClient 型で受けられます。
type FirebaseAuthClient = fbauth.Client

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var ctxKeyUID = ctxKey{name: "uid"}

// UserAuthMiddleware verifies the Firebase ID token and stores the uid in
// the request context. All review/staging endpoints sit behind it.
type UserAuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *UserAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.FirebaseAuth == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		// Firebase ID トークン検証
		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(CtxWithUserID(r.Context(), uid)))
	})
}

// CtxWithUserID は検証済み uid を context に詰めます（テストからも利用）。
func CtxWithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKeyUID, strings.TrimSpace(uid))
}

// UserIDFromContext returns the verified Firebase UID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKeyUID)
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// CurrentUserID は middleware で検証された Firebase UID を返します。
func CurrentUserID(r *http.Request) (string, bool) {
	return UserIDFromContext(r.Context())
}
