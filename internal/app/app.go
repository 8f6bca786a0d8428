package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gocast_backend/database"
	"gocast_backend/internal/auth"
	"gocast_backend/internal/config"
	"gocast_backend/internal/handlers"
	"gocast_backend/internal/logger"
	"gocast_backend/internal/middleware"
	"gocast_backend/internal/routes"
	"gocast_backend/internal/services"
	"gocast_backend/internal/storage"
	"gocast_backend/internal/validator"
	"gocast_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// Dependencies are the process-wide resources the router is built from.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Blobs  services.BlobStore
	Tokens *auth.TokenManager
	// Blacklist is nil when Redis is not configured.
	Blacklist auth.Blacklist
}

func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env != "production")
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Server.Env)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		return err
	}
	logger.Info("Database connected")

	registry, err := storage.Open(ctx, cfg.StorageConfig())
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()
	logger.Info("Storage initialized", "backend", registry.Primary().Backend(), "legacy_read", cfg.Storage.LegacyRead)

	deps := Dependencies{
		Config: cfg,
		DB:     gormDB,
		Blobs:  registry,
		Tokens: auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL()),
	}
	if redisCfg, ok := cfg.RedisConfig(); ok {
		bl, err := auth.NewRedisBlacklist(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer bl.Close()
		deps.Blacklist = bl
		logger.Info("Token revocation enabled", "redis", redisCfg.Addr)
	} else {
		logger.Warn("Redis not configured, logout cannot revoke tokens")
	}

	container := services.NewServiceContainer(deps.Blobs, deps.Tokens, deps.Blacklist)
	if err := container.AuthService.SeedAdmin(ctx, gormDB, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           setupRouter(deps, container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// SetupRouter wires services, handlers and middleware onto a new engine.
func SetupRouter(deps Dependencies) *gin.Engine {
	return setupRouter(deps, services.NewServiceContainer(deps.Blobs, deps.Tokens, deps.Blacklist))
}

func setupRouter(deps Dependencies, container *services.ServiceContainer) *gin.Engine {
	appHandlers := initializeHandlers(deps.Config, container)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(deps.Config.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(deps.DB))

	routes.RegisterRoutes(router, appHandlers, middleware.AuthMiddleware(deps.Tokens, deps.Blacklist))
	return router
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:   handlers.NewAuthHandler(baseHandler, container.AuthService),
		TalentHandler: handlers.NewTalentHandler(baseHandler, container.TalentService),
		UploadHandler: handlers.NewUploadHandler(baseHandler, container.AssetService, cfg.MaxUploadSize()),
		FileHandler:   handlers.NewFileHandler(baseHandler, container.AssetService),
		HealthHandler: handlers.NewHealthHandler(),
	}
}
