package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tidytask/tidytask/internal/app"
	"github.com/tidytask/tidytask/internal/auth"
	"github.com/tidytask/tidytask/internal/authz"
	"github.com/tidytask/tidytask/internal/observability"
	"github.com/tidytask/tidytask/internal/platform/cache"
	"github.com/tidytask/tidytask/internal/platform/db"
	"github.com/tidytask/tidytask/internal/todos"
	"github.com/tidytask/tidytask/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis is a soft dependency: listings fall back to postgres without it.
	var todoCache *todos.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, todo cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		todoCache = todos.NewCache(redisClient, cfg.TodoCacheTTL)
	}

	todosRepo := todos.NewRepository(dbpool)
	todosService := todos.NewService(todosRepo, todoCache, logger)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, todoCache, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(usersService, tokens)
	authHandler := auth.NewHandler(logger, authService)

	authzMiddleware := authz.Middleware{Tokens: tokens, Todos: todosService, Logger: logger}
	usersHandler := users.NewHandler(logger, usersService, authzMiddleware)
	todosHandler := todos.NewHandler(logger, todosService, authzMiddleware)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  authHandler,
		UsersHandler: usersHandler,
		TodosHandler: todosHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
