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

	"github.com/TeamLinkup/matchmaking-system/config"
	"github.com/TeamLinkup/matchmaking-system/db"
	"github.com/TeamLinkup/matchmaking-system/handlers"
	"github.com/TeamLinkup/matchmaking-system/live"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	api "github.com/TeamLinkup/matchmaking-system/routes"
	"github.com/TeamLinkup/matchmaking-system/services"
	"github.com/TeamLinkup/matchmaking-system/storage"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
)

const reminderSweepSchedule = "@hourly"

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

	// Инициализация загрузчика файлов (Cloudflare R2)
	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	// Доска предложений (websocket)
	offerBoard := live.NewHub()
	go offerBoard.Run()
	logger.Info("offer board hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	offerRepo := repositories.NewPostgresOfferRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	reminderRepo := repositories.NewPostgresReminderRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo, uploader)
	offerService := services.NewOfferService(dbConn, offerRepo, teamRepo, userRepo, offerBoard)
	matchService := services.NewMatchService(
		dbConn, // для транзакции принятия предложения
		offerRepo,
		matchRepo,
		teamRepo,
		userRepo,
		reminderRepo,
		emailService,
		offerBoard,
		logger,
	)
	logger.Info("services initialized")

	// Планировщик свипа напоминаний: раз в час плюс немедленный запуск.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(reminderSweepSchedule, func() {
		if err := matchService.CheckAndSendReminders(context.Background()); err != nil {
			logger.Error("reminder sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		logger.Error("failed to schedule reminder sweep", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := matchService.CheckAndSendReminders(context.Background()); err != nil {
			logger.Error("initial reminder sweep failed", slog.Any("error", err))
		}
	}()
	logger.Info("reminder sweep scheduled", slog.String("schedule", reminderSweepSchedule))

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	teamHandler := handlers.NewTeamHandler(teamService)
	offerHandler := handlers.NewOfferHandler(offerService, matchService)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(offerBoard)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		teamHandler,
		offerHandler,
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
