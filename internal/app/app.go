package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/cyberkid042/auth-identity-service/internal/config"
	"github.com/cyberkid042/auth-identity-service/internal/credential"
	"github.com/cyberkid042/auth-identity-service/internal/database"
	"github.com/cyberkid042/auth-identity-service/internal/handler"
	"github.com/cyberkid042/auth-identity-service/internal/metrics"
	"github.com/cyberkid042/auth-identity-service/internal/middleware"
	"github.com/cyberkid042/auth-identity-service/internal/policy"
	"github.com/cyberkid042/auth-identity-service/internal/repository"
	"github.com/cyberkid042/auth-identity-service/internal/router"
	"github.com/cyberkid042/auth-identity-service/internal/service"
	"github.com/cyberkid042/auth-identity-service/internal/token"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	rateLimitPrefix = "auth-identity:ratelimit"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := token.NewService(cfg.JWTSecret, cfg.JWTRefreshSecret)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	m := metrics.New(nil)
	authService, err := service.NewAuthService(
		store,
		credential.NewBcryptHasher(cfg.BcryptCost),
		policy.NewEngine(cfg.DisposableDomains),
		tokens,
		m,
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	if cfg.AdminEmail != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	limiter, err := a.newRateLimiter(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	userService := service.NewUserService(store)
	exposeDetails := !cfg.IsProduction()

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(tokens, m), router.Handlers{
		Auth:   handler.NewAuthHandler(authService, exposeDetails),
		User:   handler.NewUserHandler(userService, exposeDetails),
		Admin:  handler.NewAdminHandler(),
		Health: handler.NewHealthHandler(userService, cfg.DBDriver),
	}, limiter, m)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (service.UserStore, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

		if err := db.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		return repository.NewUserRepository(db.Pool), nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, func() {
			_ = db.Close()
		})
		return repository.NewSQLiteUserRepository(db), nil

	case config.DriverMemory:
		slog.Warn("using in-memory user store; data is lost on restart")
		return repository.NewMemoryUserRepository(), nil
	}

	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func (a *App) newRateLimiter(ctx context.Context, cfg *config.Config) (middleware.RateLimiter, error) {
	if cfg.RedisURL == "" {
		return middleware.NewLocalRateLimiter(cfg.RateLimitRPM, cfg.AuthRateLimitRPM), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	a.cleanupFuncs = append(a.cleanupFuncs, func() {
		_ = client.Close()
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("rate limiting backed by redis", "addr", opts.Addr)
	return middleware.NewRedisRateLimiter(client, cfg.RateLimitRPM, cfg.AuthRateLimitRPM, rateLimitPrefix), nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.Close()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
