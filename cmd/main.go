package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"merchant-backoffice/internal/api"
	"merchant-backoffice/internal/config"
	"merchant-backoffice/internal/db"
	"merchant-backoffice/internal/dispatch"
	"merchant-backoffice/internal/events"
	"merchant-backoffice/internal/hub"
	"merchant-backoffice/internal/logging"
	"merchant-backoffice/internal/models"
	"merchant-backoffice/internal/providers"
	"merchant-backoffice/internal/sweep"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	database, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Infof("Connected to database")

	wsHub := hub.New(logger)
	senders := providers.NewRegistry(cfg, wsHub)

	dispatcher := dispatch.New(database, database, database, database, senders, logger)

	outbox := dispatch.NewOutboxWorker(
		database, database, senders, logger,
		cfg.Dispatch.MaxWorkers, cfg.Dispatch.QueueSize,
		cfg.Dispatch.PollInterval, cfg.Dispatch.RetryBackoff,
	)

	sweeper := sweep.New(
		database, database, database, dispatcher,
		senders[models.ActionTypeEmail], logger,
		cfg.Sweep.Reminder3DayTemplate, cfg.Sweep.Reminder1DayTemplate,
	)

	var wg sync.WaitGroup
	outbox.Start(&wg)
	sweeper.Start(&wg, cfg.Sweep.Interval)

	var consumer *events.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = events.NewConsumer(cfg, dispatcher, logger)
		consumer.Start(&wg)
		logger.Infof("Kafka consumer started on topic %s", cfg.Kafka.Topic)
	}

	handler := api.NewHandler(database, dispatcher, sweeper, wsHub, logger)
	router := api.NewRouter(handler, logger, cfg)

	go func() {
		logger.Infof("API server listening on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down")

	if consumer != nil {
		consumer.Close()
	}
	sweeper.Stop()
	outbox.Stop()
	wg.Wait()
	logger.Infof("Shutdown complete")
}
