package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/statside/sportschat/internal/service"
)

// Service schedules the daily full-scope scrape. It enqueues through
// ScrapeService, so the at-most-one-in-flight rule applies to scheduled runs
// exactly as it does to manual ones.
type Service struct {
	scrapeService *service.ScrapeService
	scheduleHour  int
	log           *zap.Logger
	stopChan      chan struct{}
}

func NewService(scrapeService *service.ScrapeService, scheduleHour int, log *zap.Logger) *Service {
	if scheduleHour < 0 || scheduleHour > 23 {
		scheduleHour = 3
	}
	return &Service{
		scrapeService: scrapeService,
		scheduleHour:  scheduleHour,
		log:           log,
		stopChan:      make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.runDailyScrape()
	s.log.Info("cron service started", zap.Int("schedule_hour", s.scheduleHour))
}

func (s *Service) Stop() {
	close(s.stopChan)
	s.log.Info("cron service stopped")
}

func (s *Service) runDailyScrape() {
	timer := time.NewTimer(time.Until(s.nextRun(time.Now().UTC())))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.kickScrape()
			timer.Reset(time.Until(s.nextRun(time.Now().UTC())))
		}
	}
}

// nextRun returns the next occurrence of the schedule hour, UTC.
func (s *Service) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.scheduleHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func (s *Service) kickScrape() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	jobID, err := s.scrapeService.Start(ctx, service.ScopeAll, "")
	if err != nil {
		s.log.Error("scheduled scrape failed to start", zap.Error(err))
		return
	}
	s.log.Info("scheduled scrape queued", zap.Int64("job_id", jobID))
}
