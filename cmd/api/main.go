package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/auth"
	"github.com/SergeiKhy/url-analytics/internal/config"
	"github.com/SergeiKhy/url-analytics/internal/enrichment"
	"github.com/SergeiKhy/url-analytics/internal/handler"
	"github.com/SergeiKhy/url-analytics/internal/middleware"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	"github.com/SergeiKhy/url-analytics/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Подключение к БД (postgres)
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	// Подключение к Redis
	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Инициализация репозиториев
	urlRepo := repository.NewURLRepository(db)
	cacheRepo := repository.NewCacheRepository(redis)
	clickRepo := repository.NewClickRepository(db)

	// GeoIP опционален: без базы клики пишутся без страны и города
	var locator service.Locator
	if cfg.GeoIP.DBPath != "" {
		geo, err := enrichment.NewGeoIPLocator(cfg.GeoIP.DBPath)
		if err != nil {
			logger.Fatal("Failed to open GeoIP database", zap.String("path", cfg.GeoIP.DBPath), zap.Error(err))
		}
		defer geo.Close()
		locator = geo
		logger.Info("GeoIP enrichment enabled")
	}

	// Инициализация процессора кликов (Worker Pool)
	clickProcessor := service.NewClickProcessor(
		clickRepo,
		enrichment.NewUserAgentParser(),
		locator,
		service.ClickProcessorConfig{
			Workers:    cfg.Clicks.Workers,
			BufferSize: cfg.Clicks.BufferSize,
		},
		logger,
	)
	clickProcessor.Start()
	defer clickProcessor.Stop()

	// Инициализация сервисов
	urlService := service.NewURLService(urlRepo, cacheRepo, cfg.App.CacheTTL, logger)
	analyticsService := service.NewAnalyticsService(urlRepo, clickRepo, service.AnalyticsConfig{
		WindowDays: cfg.Analytics.WindowDays,
	}, logger)

	// Инициализация middleware
	createLimiter := middleware.NewRateLimiter(middleware.PerWindow(
		cfg.RateLimit.Create.Max,
		cfg.RateLimit.Create.Window,
		"Too many URLs created from this IP, please try again later",
	))
	defer createLimiter.Stop()

	analyticsLimiter := middleware.NewRateLimiter(middleware.PerWindow(
		cfg.RateLimit.Analytics.Max,
		cfg.RateLimit.Analytics.Window,
		"Too many analytics requests from this IP, please try again later",
	))
	defer analyticsLimiter.Stop()

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Настройка роутера
	router := handler.NewRouter(handler.RouterDeps{
		URLService:       urlService,
		AnalyticsService: analyticsService,
		ClickProcessor:   clickProcessor,
		Tokens:           auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		CreateLimiter:    createLimiter,
		AnalyticsLimiter: analyticsLimiter,
		BaseURL:          cfg.App.BaseURL,
		Logger:           logger,
	})

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
