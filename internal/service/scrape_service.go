package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/model/dto"
	"github.com/statside/sportschat/internal/pkg/queue"
	"github.com/statside/sportschat/internal/repository"
)

var (
	ErrJobNotFound  = errors.New("scraping job not found")
	ErrUnknownScope = errors.New("unknown scrape scope")
	ErrJobTerminal  = errors.New("job already finished")
)

// ScopeAll covers every configured (sport, source) unit.
const ScopeAll = "all"

// ScrapeService owns the ScrapingJob lifecycle on the API side: it creates
// jobs, enforces at-most-one-in-flight-per-scope, and hands work to the
// worker through the queue.
type ScrapeService struct {
	jobRepo *repository.JobRepository
	queue   *queue.Queue
	cfg     *config.Config
	log     *zap.Logger

	// mu closes the check-then-create window for concurrent Start calls on
	// the same scope within this process.
	mu sync.Mutex
}

func NewScrapeService(
	jobRepo *repository.JobRepository,
	q *queue.Queue,
	cfg *config.Config,
	log *zap.Logger,
) *ScrapeService {
	return &ScrapeService{
		jobRepo: jobRepo,
		queue:   q,
		cfg:     cfg,
		log:     log,
	}
}

// Start creates and enqueues a job covering the scope, returning immediately
// with the job ID. When a job for the scope is already queued or running,
// Start returns that job's ID instead of creating a duplicate run.
func (s *ScrapeService) Start(ctx context.Context, scope, season string) (int64, error) {
	units := s.unitsFor(scope)
	if len(units) == 0 {
		return 0, ErrUnknownScope
	}
	if season == "" {
		season = s.cfg.Scraper.Season
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.jobRepo.FindActiveByScope(scope)
	if err == nil {
		s.log.Info("scrape already in flight for scope",
			zap.String("scope", scope),
			zap.Int64("job_id", active.ID),
		)
		return active.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	job := &model.ScrapingJob{
		Scope:  scope,
		Season: season,
		Status: model.JobStatusQueued,
	}
	if err := s.jobRepo.Create(job); err != nil {
		return 0, err
	}

	msg := &queue.JobMessage{
		JobID:  job.ID,
		Scope:  scope,
		Season: season,
		Units:  units,
	}
	if err := s.queue.Push(ctx, msg); err != nil {
		// The job row exists but no worker will ever see it.
		job.Status = model.JobStatusFailed
		_ = job.SetErrors([]model.UnitError{{
			Stage:   "dispatch",
			Message: err.Error(),
			Fatal:   true,
		}})
		_ = s.jobRepo.Update(job)
		return 0, err
	}

	s.log.Info("scrape job queued",
		zap.Int64("job_id", job.ID),
		zap.String("scope", scope),
		zap.String("season", season),
		zap.Int("units", len(units)),
	)
	return job.ID, nil
}

// RunSport is the single-sport convenience wrapper over Start.
func (s *ScrapeService) RunSport(ctx context.Context, sport string) (int64, error) {
	return s.Start(ctx, sport, "")
}

// Status returns the job's current state with its accumulated unit errors.
// The status stays queryable after the job finishes or fails.
func (s *ScrapeService) Status(jobID int64) (*dto.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	return &dto.JobStatusResponse{
		JobID:            job.ID,
		Scope:            job.Scope,
		Season:           job.Season,
		Status:           job.Status,
		CancelRequested:  job.CancelRequested,
		RecordsProcessed: job.RecordsProcessed,
		UnitErrors:       job.Errors(),
		CreatedAt:        job.CreatedAt,
		StartedAt:        job.StartedAt,
		FinishedAt:       job.FinishedAt,
	}, nil
}

// Cancel flags a job for cancellation. In-flight units finish their current
// work; no new units start.
func (s *ScrapeService) Cancel(jobID int64) error {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		return err
	}
	if job.Terminal() {
		return ErrJobTerminal
	}
	return s.jobRepo.RequestCancel(jobID)
}

// unitsFor expands a scope into its (sport, source) units from the source
// configuration. Unknown scopes expand to nothing.
func (s *ScrapeService) unitsFor(scope string) []queue.UnitSpec {
	var units []queue.UnitSpec
	for _, src := range s.cfg.Scraper.Sources {
		for sport := range src.Paths {
			if scope == ScopeAll || scope == sport {
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
