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
	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/config"
	"github.com/noah-isme/willow-go-api/internal/database"
	"github.com/noah-isme/willow-go-api/internal/handler"
	"github.com/noah-isme/willow-go-api/internal/middleware"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
	"github.com/noah-isme/willow-go-api/internal/router"
	"github.com/noah-isme/willow-go-api/internal/service"
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

	err = db.AutoMigrate(
		&models.Class{},
		&models.Guild{},
		&models.Student{},
		&models.Quest{},
		&models.Enrollment{},
		&models.HistoryEntry{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, leaderboard cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, reward events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	guildRepo := repository.NewGuildRepository(db)
	classRepo := repository.NewClassRepository(db)
	questRepo := repository.NewQuestRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)

	leaderboardService := service.NewLeaderboardService(leaderboardRepo, redisClient, cfg.LeaderboardCacheTTL, cfg.LeaderboardLimit, logger)
	publisher := service.NewNATSRewardPublisher(natsConn, service.DefaultRewardSubject, logger)

	rewardService := service.NewRewardService(studentRepo, guildRepo, questRepo, enrollmentRepo, rewardRepo, validate, leaderboardService, publisher, logger)
	studentService := service.NewStudentService(studentRepo, guildRepo, rewardRepo, validate, logger)
	classService := service.NewClassService(classRepo, historyRepo, validate, logger)
	guildService := service.NewGuildService(guildRepo, classRepo, studentRepo, validate, logger)
	questService := service.NewQuestService(questRepo, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, questRepo, validate, logger)
	historyService := service.NewHistoryService(historyRepo, studentRepo, logger)
	seedService := service.NewSeedService(questRepo, classRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:     handler.NewStudentHandler(studentService, rewardService, historyService, enrollmentService, logger),
		ClassHandler:       handler.NewClassHandler(classService, logger),
		GuildHandler:       handler.NewGuildHandler(guildService, rewardService, logger),
		QuestHandler:       handler.NewQuestHandler(questService, logger),
		EnrollmentHandler:  handler.NewEnrollmentHandler(enrollmentService, rewardService, logger),
		LeaderboardHandler: handler.NewLeaderboardHandler(leaderboardService, logger),
		SeedHandler:        handler.NewSeedHandler(seedService, logger),
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
