// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tablenote/internal/adapters/in/http/middleware"
	"tablenote/internal/domain/common"
)

func currentUserID(r *http.Request) (string, bool) {
	return middleware.UserIDFromContext(r.Context())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the domain error taxonomy onto HTTP status codes:
//
//	ErrValidation      -> 400
//	ErrNotFound        -> 404
//	ErrConflict        -> 409
//	ErrExternalService -> 503 (retryable: resubmit without re-uploading)
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, common.ErrExternalService):
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func readJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return common.Validationf("invalid json body: %v", err)
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
}

// requireUserID pulls the verified uid or writes 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := currentUserID(r)
	if !ok || strings.TrimSpace(uid) == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return "", false
	}
	return uid, true
}
