package auth

import (
	"errors"

	"github.com/yourusername/auth-api/internal/users"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateUsername  = users.ErrDuplicateUsername
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrStoreUnavailable   = users.ErrStoreUnavailable
	ErrInternal           = errors.New("internal error")

	// トークン関連
	ErrTokenMissing      = errors.New("token missing")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
)

// ValidationError は利用者が修正できる入力エラーです。Message はそのままレスポンスに載せます。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsTokenInvalid はトークンの検証失敗（形式不正・署名不一致・期限切れ）かどうかを返します。
func IsTokenInvalid(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenBadSignature) ||
		errors.Is(err, ErrTokenExpired)
}
