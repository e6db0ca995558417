package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nowest-interior/admin-auth/internal/api/http"
	"github.com/nowest-interior/admin-auth/internal/api/http/handlers"
	"github.com/nowest-interior/admin-auth/internal/auth"
	"github.com/nowest-interior/admin-auth/internal/config"
	"github.com/nowest-interior/admin-auth/internal/observability"
	"github.com/nowest-interior/admin-auth/internal/persistence"
	"github.com/nowest-interior/admin-auth/internal/repository"
	"github.com/nowest-interior/admin-auth/internal/service"
	"github.com/nowest-interior/admin-auth/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	adminRepo := repository.NewAdminRepository(pg.PoolHandle())
	adminService, err := service.NewAdminService(cfg.Auth, adminRepo, logger)
	if err != nil {
		logger.Fatal("failed to init admin service", zap.Error(err))
	}

	if err := adminService.EnsureDefaultAdmin(ctx, cfg.Auth.DefaultAdminUsername, cfg.Auth.DefaultAdminPassword); err != nil {
		logger.Fatal("failed to ensure default admin", zap.Error(err))
	}

	var (
		sessions session.Store
		redis    *persistence.Redis
	)
	switch cfg.Session.Backend {
	case "redis":
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		sessions = session.NewRedisStore(redis.Client, cfg.Session.MaxAge())
	default:
		sessions = session.NewMemoryStore(logger)
	}
	session.StartSweeper(ctx, sessions, cfg.Session.SweepInterval(), cfg.Session.MaxAge(), logger)

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewMiddleware(adminService.TokenManager(), sessions, adminService, cfg.Session.MaxAge(), cfg.Session.CookieName, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(adminService, sessions, cfg.Session, metrics, logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
