// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-api/internal/auth"
	"github.com/yourusername/auth-api/internal/config"
	"github.com/yourusername/auth-api/internal/logging"
	"github.com/yourusername/auth-api/internal/metrics"
	"github.com/yourusername/auth-api/internal/users"
)

const (
	serviceName    = "auth-api"
	serviceVersion = "0.1.0"
)

func main() {
	// 設定の読み込み（JWT_SECRET が無ければここで終了）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	store, err := setupStore(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up credential store: %v", err)
	}
	defer store.Close()

	router, err := newRouter(cfg, logger, store, metrics.NewRecorder())
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.start", "addr", srv.Addr, "mode", cfg.GinMode, "store_configured", cfg.DatabaseURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("server.stop", "reason", "signal")
	case err := <-errCh:
		logger.Error("server.fail", "err", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown.fail", "err", err)
	}
	logger.Info("server.stopped")
}

// newRouter はミドルウェアとルーティングを組み立てた Gin エンジンを返します。
func newRouter(cfg *config.Config, logger *slog.Logger, store users.Store, rec *metrics.Recorder) (*gin.Engine, error) {
	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	svc, err := auth.NewService(store, auth.NewBcryptHasher(auth.DefaultBcryptCost), tokens, auth.ServiceOptions{
		StoreTimeout: cfg.StoreTimeout,
	})
	if err != nil {
		return nil, err
	}
	authManager := auth.NewManager(svc, logger, auth.ManagerOptions{
		ForceSecureCookie: cfg.GinMode == gin.ReleaseMode,
		Metrics:           rec,
	})

	// Gin の既定 Logger の代わりに slog のリクエストログを使う
	router := gin.New()
	router.Use(logging.RequestLogger(logger), gin.CustomRecovery(auth.RecoveryHandler(authManager)))

	// セッションストアの設定（トークンをHttpOnly Cookieに載せる）
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   authManager.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, authManager, svc, cfg.DatabaseURL != "", rec)
	return router, nil
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, svc *auth.Service, storeConfigured bool, rec *metrics.Recorder) {
	health := handleHealth(svc, storeConfigured)
	router.GET("/", health)
	router.GET("/metrics", gin.WrapH(rec.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", health)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authManager.Signup)
			authRoutes.POST("/login", authManager.Login)
			authRoutes.POST("/logout", authManager.Logout)
			authRoutes.GET("/verify", authManager.RequireLogin(), authManager.Verify)
		}
	}
}

// handleHealth はヘルスチェックのハンドラーを返します。
// ストアの状態は保持せず、リクエストのたびに問い合わせます。
func handleHealth(svc *auth.Service, storeConfigured bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "connected"
		switch {
		case !storeConfigured:
			database = "not_configured"
		case svc.CheckStore(c.Request.Context()) != nil:
			database = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  serviceName,
			"version":  serviceVersion,
			"database": database,
		})
	}
}
