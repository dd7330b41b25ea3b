package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type claimsContextKey struct{}

// RequireLogin はトークンを検証するミドルウェアを返します。
// セッション Cookie を優先し、無ければ Authorization: Bearer を使います。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			m.metrics.ObserveVerification("missing")
			e := classifyError(ErrTokenMissing)
			c.AbortWithStatusJSON(e.status, errorBody(e.code, e.message))
			return
		}

		claims, err := m.svc.Tokens().Verify(token)
		if err != nil {
			m.metrics.ObserveVerification(verificationResult(err))
			m.log.DebugContext(c.Request.Context(), "auth.token.rejected", "err", err)
			e := classifyError(err)
			c.AbortWithStatusJSON(e.status, errorBody(e.code, e.message))
			return
		}

		m.metrics.ObserveVerification("ok")
		c.Set(ContextUserKey, claims)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// CurrentUser は RequireLogin が設定したクレームを返します。
func CurrentUser(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

// WithClaims は ctx にクレームを格納します。
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext は WithClaims で格納したクレームを取り出します。
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return claims, ok && claims != nil
}

func tokenFromRequest(c *gin.Context) string {
	if hasSession(c) {
		if token, ok := sessions.Default(c).Get(sessionKeyToken).(string); ok && token != "" {
			return token
		}
	}
	return bearerToken(c.GetHeader("Authorization"))
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
