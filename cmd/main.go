package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ranch-alerting-service/internal/api"
	"ranch-alerting-service/internal/config"
	"ranch-alerting-service/internal/db"
	"ranch-alerting-service/internal/dispatch"
	"ranch-alerting-service/internal/engine"
	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/scheduler"
	"ranch-alerting-service/internal/settings"
	"ranch-alerting-service/internal/snapshot"
	"ranch-alerting-service/internal/store"
	"ranch-alerting-service/internal/trend"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Pick the snapshot provider: Postgres when a DSN is configured,
	// in-memory otherwise.
	var (
		provider  snapshot.Provider
		equipment snapshot.EquipmentSource
	)
	if cfg.DB.DSN != "" {
		dbConn, err := db.New(cfg.DB.DSN)
		if err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			log.Fatalf("Database connection failed: %v", err)
		}
		defer dbConn.Close()
		provider = dbConn
		equipment = dbConn
		logger.Infof("Snapshot provider: postgres")
	} else {
		mem := snapshot.NewMemory("")
		provider = mem
		equipment = mem
		logger.Infof("Snapshot provider: in-memory")
	}

	// Core components
	notifStore := store.New()
	rules := engine.NewRegistry()
	settingsMgr := settings.NewManager()
	trends := trend.NewCalculator(provider)
	eng := engine.New(provider, equipment, trends, notifStore, rules, settingsMgr, logger)

	// Delivery channels
	hub := dispatch.NewHub(logger)
	var publisher *dispatch.Publisher
	if cfg.Kafka.Broker != "" {
		publisher = dispatch.NewPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer publisher.Close()
		logger.Infof("Kafka publisher enabled on topic %s", cfg.Kafka.Topic)
	}
	var telegram *dispatch.TelegramSender
	if cfg.Telegram.BotToken != "" {
		telegram = dispatch.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			cfg.Telegram.RateLimit, logger)
		logger.Infof("Telegram push enabled for chat %d", cfg.Telegram.ChatID)
	}
	dispatcher := dispatch.New(hub, publisher, telegram, settingsMgr, logger)

	// Scheduler: immediate pass, then one per interval
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	sched := scheduler.New(eng, dispatcher, logger, cfg.Engine.Interval, cfg.Engine.PassTimeout)
	sched.Start(ctx, &wg)

	// Start API server
	handler := api.NewHandler(notifStore, eng, rules, settingsMgr, hub, logger)
	router := api.NewRouter(logger, cfg, handler)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	cancel()
	sched.Stop()
	wg.Wait()
	logger.Infof("Service stopped")
}
