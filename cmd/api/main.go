package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/config"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/database"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/handler"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/middleware"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/repository"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/router"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/service"
	"github.com/ianoniszczuk/leet-pi-sub000/pkg/judge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}, &models.StudentRole{}, &models.Guide{}, &models.Exercise{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var events service.EventPublisher
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
		events = natsConn
	}

	judgeClient, err := judge.NewClient(judge.Config{
		BaseURL:     cfg.JudgeURL,
		Timeout:     cfg.JudgeTimeout,
		MemoryLimit: cfg.JudgeMemoryMB,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create judge client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	submissionService := service.NewSubmissionService(submissionRepo, exerciseRepo, judgeClient, events, validate, logger)
	exerciseService := service.NewExerciseService(exerciseRepo, logger)
	rosterService := service.NewRosterSyncService(studentRepo, cfg.SeedEnabled, cfg.SeedToken, logger)
	metricsService := service.NewMetricsService(studentRepo, exerciseRepo, submissionRepo, redisClient, cfg.MetricsCacheTTL, logger)
	rankingService := service.NewRankingService(submissionRepo, studentRepo, exerciseRepo, logger)

	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	exerciseHandler := handler.NewExerciseHandler(exerciseService, logger)
	rosterHandler := handler.NewRosterHandler(rosterService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsService, logger)
	rankingHandler := handler.NewRankingHandler(rankingService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: submissionHandler,
		ExerciseHandler:   exerciseHandler,
		MetricsHandler:    metricsHandler,
		RankingHandler:    rankingHandler,
		RosterHandler:     rosterHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
