package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiError はエラー種別ごとの HTTP 表現です。
type apiError struct {
	status  int
	code    string
	result  string
	message string
}

func classifyError(err error) apiError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return apiError{http.StatusBadRequest, "VALIDATION_ERROR", "validation_error", verr.Message}
	case errors.Is(err, ErrDuplicateUsername):
		return apiError{http.StatusConflict, "DUPLICATE_USERNAME", "duplicate_username", "Username already exists"}
	case errors.Is(err, ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid_credentials", "Invalid username or password"}
	case errors.Is(err, ErrStoreUnavailable):
		return apiError{http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "store_unavailable", "Service temporarily unavailable, please try again later"}
	case errors.Is(err, ErrTokenMissing):
		return apiError{http.StatusUnauthorized, "UNAUTHORIZED", "missing", "Access token required"}
	case IsTokenInvalid(err):
		return apiError{http.StatusForbidden, "FORBIDDEN", "invalid", "Invalid or expired token"}
	default:
		return apiError{http.StatusInternalServerError, "INTERNAL_ERROR", "internal_error", "Internal server error"}
	}
}

// fail はエラーを構造化レスポンスに変換して処理を中断します。
// 想定外のエラーだけをサーバー側に記録し、呼び出し元には汎用メッセージを返します。
func (m *Manager) fail(c *gin.Context, op string, err error) {
	e := classifyError(err)
	m.metrics.ObserveOperation(op, e.result)

	ctx := c.Request.Context()
	switch e.status {
	case http.StatusInternalServerError:
		m.log.ErrorContext(ctx, "auth."+op+".error", "err", err)
	case http.StatusServiceUnavailable:
		m.log.WarnContext(ctx, "auth."+op+".store_unavailable", "err", err)
	default:
		m.log.DebugContext(ctx, "auth."+op+".rejected", "code", e.code)
	}

	c.AbortWithStatusJSON(e.status, errorBody(e.code, e.message))
}

func errorBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"code":    code,
		"message": message,
	}
}

// RecoveryHandler は panic を汎用の内部エラーレスポンスに変換します。gin.CustomRecovery に渡します。
func RecoveryHandler(m *Manager) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		m.log.ErrorContext(c.Request.Context(), "http.panic", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "Internal server error"))
	}
}
