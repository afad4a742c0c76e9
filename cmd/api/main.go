package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirehub/server/internal/api"
	"github.com/hirehub/server/internal/api/handlers"
	mw "github.com/hirehub/server/internal/api/middleware"
	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/oauth"
	"github.com/hirehub/server/internal/realtime"
	"github.com/hirehub/server/internal/repository"
	"github.com/hirehub/server/internal/services"
	"github.com/hirehub/server/internal/support"
	"github.com/hirehub/server/pkg/config"
	"github.com/hirehub/server/pkg/database"
	"github.com/hirehub/server/pkg/logger"

	_ "github.com/hirehub/server/docs"
)

// @title           hirehub API
// @version         1.0
// @description     Job portal identity and live-support chat

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting hirehub api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal("invalid token configuration", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	checks := map[string]handlers.Pinger{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	// Failed chat appends are retried through the worker when Redis is configured.
	var queue services.TaskEnqueuer
	if cfg.RedisAddr != "" {
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		queue = client

		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_ADDR not set, failed chat appends will not be retried")
	}

	users := repository.NewUserRepository(db)
	authSvc := services.NewAuthService(users, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens)
	chatSvc := services.NewChatService(repository.NewChatRepository(db), users, queue)
	adSvc := services.NewAdService(repository.NewAdRepository(db))

	broker := realtime.NewBroker()
	coord := support.NewCoordinator(support.NewRegistry(), chatSvc, broker)
	origins := cfg.AllowedOrigins()
	rt := realtime.NewServer(broker, coord, tokens, authSvc, origins)

	providers := oauth.NewRegistry(cfg, nil, &http.Client{Timeout: cfg.OAuthTimeout})
	log.Info("identity providers enabled", zap.Strings("providers", providers.Names()))

	limiter := mw.NewRateLimiter(10, 20)
	defer limiter.Stop()

	router := api.NewRouter(api.Dependencies{
		Tokens:         tokens,
		Resolver:       authSvc,
		AllowedOrigins: origins,
		AuthLimiter:    limiter,
		AuthHandler:    handlers.NewAuthHandler(authSvc, tokens, providers, cfg.FrontBaseURL, !cfg.IsDevelopment()),
		AccountHandler: handlers.NewAccountHandler(authSvc),
		ChatHandler:    handlers.NewChatHandler(coord, chatSvc),
		HandoffHandler: handlers.NewHandoffHandler(coord),
		AdsHandler:     handlers.NewAdsHandler(adSvc),
		HealthHandler:  handlers.NewHealthHandler(checks),
		Realtime:       rt,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Hijacked channels are not tracked by http.Server; close them first.
	if err := rt.Shutdown(shutdownCtx); err != nil {
		log.Error("live chat shutdown error", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
