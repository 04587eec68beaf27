package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/database"
	"github.com/statside/sportschat/internal/loader"
	"github.com/statside/sportschat/internal/pkg/pubsub"
	"github.com/statside/sportschat/internal/pkg/queue"
	"github.com/statside/sportschat/internal/repository"
	"github.com/statside/sportschat/internal/source"
	"github.com/statside/sportschat/internal/worker"
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
	publisher := pubsub.NewPublisher(rdb)

	jobRepo := repository.NewJobRepository(db)
	rawRepo := repository.NewRawRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	adapter := source.NewAdapter(&cfg.Scraper, logger)
	ld := loader.New(statsRepo, logger)
	processor := worker.NewProcessor(jobRepo, rawRepo, adapter, ld, publisher, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	maxWorkers := cfg.Queue.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	logger.Info("worker started", zap.Int("max_workers", maxWorkers))

	for i := 0; i < maxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					logger.Info("worker shutting down", zap.Int("worker_id", workerID))
					return
				default:
					msg, err := jobQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						logger.Warn("queue pop failed",
							zap.Int("worker_id", workerID),
							zap.Error(err),
						)
						continue
					}
					if msg == nil {
						continue // timeout, keep waiting
					}

					logger.Info("job picked up",
						zap.Int("worker_id", workerID),
						zap.Int64("job_id", msg.JobID),
					)
					if err := processor.Process(ctx, msg); err != nil {
						logger.Error("job processing failed",
							zap.Int("worker_id", workerID),
							zap.Int64("job_id", msg.JobID),
							zap.Error(err),
						)
					}
				}
			}
		}(i)
	}

	<-ctx.Done()
	logger.Info("worker shutdown complete")
}
