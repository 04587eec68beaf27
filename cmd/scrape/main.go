// Command scrape runs one scraping job inline, without the queue or a
// worker. Useful for backfills and local runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/database"
	"github.com/statside/sportschat/internal/loader"
	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/pkg/queue"
	"github.com/statside/sportschat/internal/repository"
	"github.com/statside/sportschat/internal/source"
	"github.com/statside/sportschat/internal/worker"
)

func main() {
	var (
		scope      = flag.String("scope", "all", "scrape scope: all, basketball, or football")
		season     = flag.String("season", "", "season to scrape (defaults to the configured season)")
		configPath = flag.String("config", "config.yaml", "path to config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
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

	units := unitsFor(cfg, *scope)
	if len(units) == 0 {
		logger.Error("no units for scope", zap.String("scope", *scope))
		os.Exit(1)
	}
	if *season == "" {
		*season = cfg.Scraper.Season
	}

	jobRepo := repository.NewJobRepository(db)
	rawRepo := repository.NewRawRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	job := &model.ScrapingJob{
		Scope:  *scope,
		Season: *season,
		Status: model.JobStatusQueued,
	}
	if err := jobRepo.Create(job); err != nil {
		logger.Fatal("create job failed", zap.Error(err))
	}

	adapter := source.NewAdapter(&cfg.Scraper, logger)
	ld := loader.New(statsRepo, logger)
	processor := worker.NewProcessor(jobRepo, rawRepo, adapter, ld, nil, cfg, logger)

	msg := &queue.JobMessage{
		JobID:  job.ID,
		Scope:  *scope,
		Season: *season,
		Units:  units,
	}
	if err := processor.Process(context.Background(), msg); err != nil {
		logger.Fatal("job failed", zap.Error(err))
	}

	final, err := jobRepo.GetByID(job.ID)
	if err != nil {
		logger.Fatal("reload job failed", zap.Error(err))
	}
	fmt.Printf("job %d: %s, %d records processed, %d errors\n",
		final.ID, final.Status, final.RecordsProcessed, len(final.Errors()))
	if final.Status == model.JobStatusFailed {
		os.Exit(1)
	}
}

func unitsFor(cfg *config.Config, scope string) []queue.UnitSpec {
	var units []queue.UnitSpec
	for _, src := range cfg.Scraper.Sources {
		for sport := range src.Paths {
			if scope == "all" || scope == sport {
				units = append(units, queue.UnitSpec{Sport: sport, Source: src.Name})
			}
		}
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].Sport != units[j].Sport {
			return units[i].Sport < units[j].Sport
		}
		return units[i].Source < units[j].Source
	})
	return units
}
