package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/api"
	"github.com/statside/sportschat/internal/api/handler"
	"github.com/statside/sportschat/internal/chart"
	"github.com/statside/sportschat/internal/database"
	"github.com/statside/sportschat/internal/llm"
	"github.com/statside/sportschat/internal/pkg/cron"
	"github.com/statside/sportschat/internal/pkg/pubsub"
	"github.com/statside/sportschat/internal/pkg/queue"
	"github.com/statside/sportschat/internal/pkg/ws"
	"github.com/statside/sportschat/internal/repository"
	"github.com/statside/sportschat/internal/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	logger.Info("database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}
	logger.Info("redis connected")

	jobQueue := queue.NewQueue(rdb, cfg.Queue.ScrapeQueue)

	// WebSocket hub, fed by the worker's progress channel.
	wsHub := ws.NewHub(logger)
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Run(context.Background(), func(msg *pubsub.ProgressMessage) {
			_ = wsHub.SendToJob(msg.JobID, &ws.Message{Type: msg.Type, Data: msg})
		})
		if err != nil {
			logger.Error("progress subscriber stopped", zap.Error(err))
		}
	}()

	jobRepo := repository.NewJobRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	chatRepo := repository.NewChatRepository(db)

	renderer := chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height)

	var backend llm.Backend
	if cfg.Model.BaseURL != "" {
		backend = llm.NewOllamaBackend(
			cfg.Model.BaseURL,
			cfg.Model.Name,
			time.Duration(cfg.Model.TimeoutSecs)*time.Second,
		)
		logger.Info("model backend configured", zap.String("model", cfg.Model.Name))
	}

	scrapeService := service.NewScrapeService(jobRepo, jobQueue, cfg, logger)
	chatService := service.NewChatService(chatRepo, statsRepo, renderer, backend, logger)
	statsService := service.NewStatsService(statsRepo, renderer, cfg, logger)

	scrapeHandler := handler.NewScrapeHandler(scrapeService)
	chatHandler := handler.NewChatHandler(chatService)
	statsHandler := handler.NewStatsHandler(statsService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, logger)

	if cfg.Scraper.Scheduled {
		cronService := cron.NewService(scrapeService, cfg.Scraper.ScheduleHour, logger)
		cronService.Start()
		defer cronService.Stop()
	}

	router := api.NewRouter(scrapeHandler, chatHandler, statsHandler, websocketHandler, cfg)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))
	if err := engine.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
