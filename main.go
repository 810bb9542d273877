package main

import (
	"context"
	"log"

	"movietix/cmd"
	"movietix/internal/data/repository"
	"movietix/internal/jobs"
	"movietix/internal/wire"
	"movietix/pkg/cache"
	"movietix/pkg/database"
	"movietix/pkg/mailer"
	"movietix/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if err := database.RunMigrations(context.Background(), db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient, err := cache.InitRedis(config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	seatMapCache := cache.NewSeatMapCache(redisClient, config.Redis.SeatMapTTL, logger)
	notifier := mailer.New(config.Email, logger)

	repos := repository.NewRepository(db, logger)

	app := wire.Wiring(repos, seatMapCache, notifier, config, logger)

	scheduler := jobs.NewScheduler(app.Service, config, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
