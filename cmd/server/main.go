package main

import (
	"context"
	"net/http"
	"os"

	"github.com/devconnect/backend/internal/api"
	"github.com/devconnect/backend/internal/auth"
	"github.com/devconnect/backend/internal/cache"
	"github.com/devconnect/backend/internal/config"
	"github.com/devconnect/backend/internal/db"
	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/devconnect/backend/internal/github"
	"github.com/devconnect/backend/internal/health"
	"github.com/devconnect/backend/internal/logger"
	"github.com/devconnect/backend/internal/metrics"
	"github.com/devconnect/backend/internal/middleware"
	"github.com/devconnect/backend/internal/post"
	"github.com/devconnect/backend/internal/profile"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "server")
	logger.SetDefault(log)

	ctx := context.Background()

	database, err := db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	// The cache is optional. Without it GitHub lookups hit the API on
	// every request.
	var redisCache *cache.Cache
	if c, err := cache.New(cfg.RedisAddr); err != nil {
		log.Warn(ctx, "redis unavailable, caching disabled", map[string]interface{}{
			"addr": cfg.RedisAddr,
		})
	} else {
		redisCache = c
		defer redisCache.Close()
	}

	userRepo := db.NewUserRepository(database)
	profileRepo := db.NewProfileRepository(database)
	postRepo := db.NewPostRepository(database)

	authService := auth.NewService(userRepo, cfg.JWTSecret)
	authHandlers := auth.NewHandlers(authService)
	profileHandlers := profile.NewHandlers(profileRepo, userRepo)
	postHandlers := post.NewHandlers(postRepo, userRepo)

	var githubOpts []github.Option
	if cfg.GithubToken != "" {
		githubOpts = append(githubOpts, github.WithToken(cfg.GithubToken))
	}
	githubClient := github.NewClient(githubOpts...)
	githubHandlers := github.NewHandlers(githubClient, redisCache, cfg.GithubCacheTTL)

	healthCfg := &health.CheckerConfig{
		DB:      database.DB,
		Version: version,
	}
	if redisCache != nil {
		healthCfg.Redis = redisCache.Client()
	}
	healthHandler := health.NewHandler(health.NewChecker(healthCfg))

	m := metrics.Default()

	router := api.NewRouter(
		authService,
		authHandlers,
		profileHandlers,
		postHandlers,
		githubHandlers,
		healthHandler,
		m,
	)

	handler := middleware.Chain(
		router,
		apperrors.RequestIDMiddleware,
		middleware.Logging(log),
		metrics.Middleware(m),
		middleware.CORS([]string{"*"}),
		middleware.Recoverer(log),
	)

	log.Info(ctx, "starting server", map[string]interface{}{
		"addr":    cfg.ServerAddr,
		"version": version,
	})
	if err := http.ListenAndServe(cfg.ServerAddr, handler); err != nil {
		log.Error(ctx, "server failed", err)
		os.Exit(1)
	}
}
