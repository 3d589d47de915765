// internal/domain/common/errors.go
package common

import (
	"errors"
	"fmt"
)

// ドメイン横断のエラー分類。各ドメインの sentinel はこれらを errors.Is で
// 判定できるように Wrap して使います。
var (
	// ErrValidation は入力の構造的な不正（フィールド欠落・重複など）。
	// ストアに触れる前に返り、リトライ不可。
	ErrValidation = errors.New("validation failed")

	// ErrNotFound は対象リソース（セッション・画像・レストラン・レビュー）不在。
	ErrNotFound = errors.New("not found")

	// ErrConflict は状態衝突（セッション画像上限超過など）。
	ErrConflict = errors.New("conflict")

	// ErrExternalService はオブジェクトストレージ / セッションストアの I/O 失敗。
	// 呼び出し側は送信全体を安全に再試行できる（temp オブジェクトとセッションは残る）。
	ErrExternalService = errors.New("external service error")
)

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted reason.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// External wraps a storage/session-store I/O failure as retryable.
func External(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExternalService, op, err)
}

// IsRetryable reports whether err should be retried by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrExternalService)
}
