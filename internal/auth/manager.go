// Package auth は認証・認可機能を提供します。
package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-api/internal/metrics"
)

const (
	SessionCookieName = "auth_session"
	sessionKeyToken   = "token"
)

// ContextUserKey は、ハンドラー間で検証済みクレームを共有するためのキーです。
const ContextUserKey = "auth.user"

// ManagerOptions は Manager の任意設定です。
type ManagerOptions struct {
	// true の場合、HTTPS 判定に関係なく Cookie に Secure を付けます
	ForceSecureCookie bool
	Metrics           *metrics.Recorder
}

// Manager は認証 API のハンドラーとミドルウェアをまとめた構造体です。
type Manager struct {
	svc          *Service
	log          *slog.Logger
	metrics      *metrics.Recorder
	secureCookie bool
}

// NewManager は認証マネージャーを作成します。
func NewManager(svc *Service, log *slog.Logger, opts ManagerOptions) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		svc:          svc,
		log:          log,
		metrics:      opts.Metrics,
		secureCookie: opts.ForceSecureCookie,
	}
}

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func (m *Manager) SessionMaxAgeSeconds() int {
	return int(m.svc.Tokens().TTL().Seconds())
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup は /api/auth/signup のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	req, ok := m.bindCredentials(c, "signup")
	if !ok {
		return
	}

	user, err := m.svc.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		m.fail(c, "signup", err)
		return
	}

	m.metrics.ObserveOperation("signup", "success")
	m.log.InfoContext(c.Request.Context(), "auth.signup.ok", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    userPayload(user.ID, user.Username),
	})
}

// Login は /api/auth/login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	req, ok := m.bindCredentials(c, "login")
	if !ok {
		return
	}

	res, err := m.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		m.fail(c, "login", err)
		return
	}

	// Cookie とレスポンスボディは独立した受け渡し先なので、Cookie の保存失敗はログのみ
	if err := m.saveSessionToken(c, res.Token); err != nil {
		m.log.WarnContext(c.Request.Context(), "auth.login.cookie_save_failed", "err", err)
	}

	m.metrics.ObserveOperation("login", "success")
	m.log.InfoContext(c.Request.Context(), "auth.login.ok", "user_id", res.User.ID, "username", res.User.Username)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt.UTC(),
		"user":      userPayload(res.User.ID, res.User.Username),
	})
}

// Logout は /api/auth/logout のハンドラーです。
// サーバー側でトークンを失効させる仕組みはなく、Cookie の削除を指示するだけです。
func (m *Manager) Logout(c *gin.Context) {
	if hasSession(c) {
		session := sessions.Default(c)
		session.Clear()
		session.Options(m.cookieOptions(c, -1))
		if err := session.Save(); err != nil {
			m.log.WarnContext(c.Request.Context(), "auth.logout.cookie_clear_failed", "err", err)
		}
	}

	m.metrics.ObserveOperation("logout", "success")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logout successful",
	})
}

// Verify は /api/auth/verify のハンドラーです。RequireLogin の後ろに置きます。
func (m *Manager) Verify(c *gin.Context) {
	claims, ok := CurrentUser(c)
	if !ok {
		m.fail(c, "verify", ErrTokenMissing)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Token is valid",
		"user":    userPayload(claims.UserID, claims.Username),
	})
}

func (m *Manager) bindCredentials(c *gin.Context, op string) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		m.fail(c, op, validationError("Username and password are required"))
		return req, false
	}
	return req, true
}

func (m *Manager) saveSessionToken(c *gin.Context, token string) error {
	if !hasSession(c) {
		return errors.New("session middleware is not installed")
	}
	session := sessions.Default(c)
	session.Set(sessionKeyToken, token)
	session.Options(m.cookieOptions(c, m.SessionMaxAgeSeconds()))
	return session.Save()
}

func (m *Manager) cookieOptions(c *gin.Context, maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secureCookie || isHTTPS(c.Request),
		SameSite: http.SameSiteStrictMode,
	}
}

func userPayload(userID, username string) gin.H {
	return gin.H{
		"userId":   userID,
		"username": username,
	}
}

func hasSession(c *gin.Context) bool {
	_, ok := c.Get(sessions.DefaultKey)
	return ok
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
