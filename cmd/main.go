package main

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

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"

	"github.com/zzzzzahd/draft-play-interno/config"
	"github.com/zzzzzahd/draft-play-interno/db"
	"github.com/zzzzzahd/draft-play-interno/engine"
	"github.com/zzzzzahd/draft-play-interno/handlers"
	"github.com/zzzzzahd/draft-play-interno/repositories"
	api "github.com/zzzzzahd/draft-play-interno/routes"
	"github.com/zzzzzahd/draft-play-interno/services"
	"github.com/zzzzzahd/draft-play-interno/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Хранилище гербов (Cloudflare R2). Без настроенных ключей
	// загрузка гербов просто недоступна.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 storage not configured, crest uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := engine.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	clock := clockwork.NewRealClock()

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	babaRepo := repositories.NewPostgresBabaRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	confirmationRepo := repositories.NewPostgresConfirmationRepository(dbConn)
	drawRepo := repositories.NewPostgresDrawRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	babaService := services.NewBabaService(babaRepo, playerRepo, statsRepo, uploader)
	confirmationService := services.NewConfirmationService(babaRepo, playerRepo, confirmationRepo, clock, wsHub)
	drawService := services.NewDrawService(babaRepo, confirmationRepo, drawRepo, clock, wsHub, nil)
	matchService := services.NewMatchService(babaRepo, playerRepo, matchRepo, statsRepo, drawService, wsHub, clock, logger)
	autoDraw := services.NewAutoDrawScheduler(babaRepo, confirmationRepo, drawService, clock, logger)
	logger.Info("services initialized")

	// Фоновые циклы: автожеребьёвка и таймауты матчей.
	rootCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	go autoDraw.Run(rootCtx)
	go matchService.Run(rootCtx)
	logger.Info("background schedulers started")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	babaHandler := handlers.NewBabaHandler(babaService)
	confirmationHandler := handlers.NewConfirmationHandler(confirmationService)
	drawHandler := handlers.NewDrawHandler(drawService, autoDraw, clock)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		babaHandler,
		confirmationHandler,
		drawHandler,
		matchHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancelBackground()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
