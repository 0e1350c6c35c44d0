package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"studymate-backend/internal/config"
	"studymate-backend/internal/database"
	"studymate-backend/internal/handlers"
	"studymate-backend/internal/logger"
	"studymate-backend/internal/middleware"
	"studymate-backend/internal/repository"
	"studymate-backend/internal/router"
	"studymate-backend/internal/services"
	"studymate-backend/internal/websocket"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	appLogger := logger.New(cfg.LogLevel)
	if cfg.Env == "production" {
		appLogger.SetFormatter(log.JSONFormatter)
	}
	appLogger.Info("starting StudyMate backend", "env", cfg.Env)

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pool.Close()
	appLogger.Info("postgres connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	defer redisClients.Close()
	appLogger.Info("redis connected")

	// ──── Step 4: Run Database Migrations ────
	if cfg.MigrationsOnStart {
		if err := database.RunMigrations(context.Background(), pool, database.Migrations, "migrations", appLogger); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		appLogger.Info("database migrations applied")
	}

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	studySessionRepo := repository.NewStudySessionRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)
	reminderRepo := repository.NewReminderRepo(pool)
	activityRepo := repository.NewActivityRepo(pool)

	// ──── Step 5: Initialize Tutor ────
	var tutor services.Tutor = services.PlaceholderTutor{}
	var quizGenerator services.QuizGenerator = services.PlaceholderTutor{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiTutor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			return fmt.Errorf("gemini client initialization failed: %w", err)
		}
		defer gemini.Close()
		tutor = gemini
		quizGenerator = gemini
		appLogger.Info("gemini tutor enabled", "model", cfg.GeminiModel)
	} else {
		appLogger.Warn("GEMINI_API_KEY not set, tutor answers with a placeholder and quiz generation is disabled")
	}

	// ──── Initialize Services ────
	publisher := services.NewRedisPublisher(redisClients.Commands)
	authService := services.NewAuthService(userRepo, sessionRepo, appLogger)
	activityService := services.NewActivityService(activityRepo, publisher, appLogger)
	dashboardService := services.NewDashboardService(quizRepo, studySessionRepo, reminderRepo, activityRepo)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, appLogger)
	studySessionHandler := handlers.NewStudySessionHandler(studySessionRepo, activityService, appLogger)
	quizHandler := handlers.NewQuizHandler(quizRepo, activityService, appLogger)
	reminderHandler := handlers.NewReminderHandler(reminderRepo, activityService, appLogger)
	activityHandler := handlers.NewActivityHandler(activityService, appLogger)
	extractor := services.NewMaterialExtractor()
	quizGenerationHandler := handlers.NewQuizGenerationHandler(quizRepo, quizGenerator, extractor, activityService, appLogger)
	tutorHandler := handlers.NewTutorHandler(tutor, extractor, activityService, appLogger)

	// ──── Step 6: Start Reminder Notifier ────
	notifier := services.NewReminderNotifier(reminderRepo, publisher, cfg.ReminderPollInterval, appLogger)
	notifier.Start()

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(authService, websocket.NewRedisSubscriber(redisClients.PubSub), appLogger)

	// ──── Step 8: Start HTTP Server ────
	sessionAuth := middleware.NewSessionAuth(authService, appLogger)
	authLimiter := middleware.NewRateLimiter(
		middleware.NewRedisWindowCounter(redisClients.Commands),
		"auth",
		cfg.AuthRateLimitPerMin,
		time.Minute,
		appLogger,
	)

	r := router.New(
		sessionAuth,
		authLimiter,
		authHandler,
		dashboardHandler,
		studySessionHandler,
		quizHandler,
		quizGenerationHandler,
		reminderHandler,
		activityHandler,
		tutorHandler,
		wsHub,
		cfg.CORSOrigins,
		appLogger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("StudyMate backend ready", "addr", server.Addr, "api", "/api", "ws", "/api/ws")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		notifier.Stop()
		wsHub.Close()
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	notifier.Stop()
	wsHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
