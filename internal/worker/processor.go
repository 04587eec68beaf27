package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/extract"
	"github.com/statside/sportschat/internal/loader"
	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/pkg/pubsub"
	"github.com/statside/sportschat/internal/pkg/queue"
	"github.com/statside/sportschat/internal/repository"
	"github.com/statside/sportschat/internal/source"
	"github.com/statside/sportschat/internal/transform"
)

// maxConcurrentUnits bounds how many (sport, source) units of one job run at
// once.
const maxConcurrentUnits = 4

// Processor runs queued scraping jobs: for every unit it fetches the source
// pages, extracts and normalizes the stat tables, and loads the rows. Unit
// failures are recorded on the job and never abort sibling units.
type Processor struct {
	jobRepo   *repository.JobRepository
	rawRepo   *repository.RawRepository
	adapter   *source.Adapter
	loader    *loader.Loader
	publisher *pubsub.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewProcessor(
	jobRepo *repository.JobRepository,
	rawRepo *repository.RawRepository,
	adapter *source.Adapter,
	ld *loader.Loader,
	publisher *pubsub.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *Processor {
	return &Processor{
		jobRepo:   jobRepo,
		rawRepo:   rawRepo,
		adapter:   adapter,
		loader:    ld,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

type unitResult struct {
	records int
	errs    []model.UnitError
	failed  bool
}

// Process runs one job message to completion and always leaves the job in a
// terminal status. The returned error covers bookkeeping failures only; unit
// failures land in the job's error list instead.
func (p *Processor) Process(ctx context.Context, msg *queue.JobMessage) error {
	if err := p.jobRepo.MarkRunning(msg.JobID); err != nil {
		return fmt.Errorf("mark job %d running: %w", msg.JobID, err)
	}
	p.publish(ctx, &pubsub.ProgressMessage{
		Type:   "job",
		JobID:  msg.JobID,
		Stage:  pubsub.StageFetch,
		Status: model.JobStatusRunning,
	})
	p.log.Info("processing scrape job",
		zap.Int64("job_id", msg.JobID),
		zap.String("scope", msg.Scope),
		zap.Int("units", len(msg.Units)),
	)

	var (
		mu        sync.Mutex
		allErrs   []model.UnitError
		total     int
		ran       int
		failed    int
		cancelled bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUnits)
	for _, unit := range msg.Units {
		// Cancellation is polled between units: in-flight units finish, no
		// new ones start.
		if p.cancelRequested(msg.JobID) {
			cancelled = true
			break
		}

		unit := unit
		g.Go(func() error {
			// Go blocks for a free slot under the concurrency limit, so the
			// cancel may have landed while this unit waited for one.
			if p.cancelRequested(msg.JobID) {
				mu.Lock()
				cancelled = true
				mu.Unlock()
				return nil
			}
			res := p.runUnit(gctx, msg, unit)
			mu.Lock()
			defer mu.Unlock()
			ran++
			total += res.records
			allErrs = append(allErrs, res.errs...)
			if res.failed {
				failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	skipped := len(msg.Units) - ran
	if cancelled {
		allErrs = append(allErrs, model.UnitError{
			Stage:   "cancel",
			Message: fmt.Sprintf("cancellation requested, %d unit(s) skipped", skipped),
		})
	}

	status := finalStatus(ran, failed, skipped)
	job, err := p.jobRepo.GetByID(msg.JobID)
	if err != nil {
		return fmt.Errorf("reload job %d: %w", msg.JobID, err)
	}
	job.Status = status
	job.RecordsProcessed = total
	now := time.Now()
	job.FinishedAt = &now
	if err := job.SetErrors(allErrs); err != nil {
		return fmt.Errorf("encode job %d errors: %w", msg.JobID, err)
	}
	if err := p.jobRepo.Update(job); err != nil {
		return fmt.Errorf("finish job %d: %w", msg.JobID, err)
	}

	p.publish(ctx, &pubsub.ProgressMessage{
		Type:    "job",
		JobID:   msg.JobID,
		Stage:   pubsub.StageDone,
		Status:  status,
		Records: total,
	})
	p.log.Info("scrape job finished",
		zap.Int64("job_id", msg.JobID),
		zap.String("status", status),
		zap.Int("records", total),
		zap.Int("unit_errors", len(allErrs)),
		zap.Bool("cancelled", cancelled),
	)
	return nil
}

// runUnit runs the fetch-extract-transform-load pipeline for one
// (sport, source) unit, one stat category at a time. Every failure is
// captured as a unit error; a unit is failed when any error is fatal.
func (p *Processor) runUnit(ctx context.Context, msg *queue.JobMessage, unit queue.UnitSpec) unitResult {
	var res unitResult
	fail := func(stage, text string) {
		res.errs = append(res.errs, model.UnitError{
			Sport:   unit.Sport,
			Source:  unit.Source,
			Stage:   stage,
			Message: text,
			Fatal:   true,
		})
		res.failed = true
	}
	warn := func(stage, text string) {
		res.errs = append(res.errs, model.UnitError{
			Sport:   unit.Sport,
			Source:  unit.Source,
			Stage:   stage,
			Message: text,
		})
	}

	src, ok := p.cfg.Scraper.SourceByName(unit.Source)
	if !ok {
		fail(pubsub.StageFetch, fmt.Sprintf("source %q not configured", unit.Source))
		return res
	}
	template, ok := src.Paths[unit.Sport]
	if !ok {
		fail(pubsub.StageFetch, fmt.Sprintf("source %q has no %s endpoint", unit.Source, unit.Sport))
		return res
	}
	schema, err := extract.SchemaFor(unit.Sport)
	if err != nil {
		fail(pubsub.StageExtract, err.Error())
		return res
	}

	for _, category := range schema.Categories() {
		p.progress(ctx, msg.JobID, unit, pubsub.StageFetch, 0)
		endpoint := expandEndpoint(template, category, msg.Season)
		doc, err := p.adapter.Fetch(ctx, src, endpoint)
		if err != nil {
			fail(pubsub.StageFetch, fmt.Sprintf("%s: %v", category, err))
			if errors.Is(err, source.ErrBlocked) {
				// The source walled us off; hammering its other pages only
				// makes that worse.
				return res
			}
			continue
		}

		if _, err := p.rawRepo.Insert(&model.ScrapedDocument{
			Sport:     unit.Sport,
			Source:    unit.Source,
			URL:       doc.URL,
			Category:  category,
			Season:    msg.Season,
			Body:      string(doc.Body),
			JobID:     msg.JobID,
			FetchedAt: doc.FetchedAt,
		}); err != nil {
			warn(pubsub.StageFetch, fmt.Sprintf("%s: store raw document: %v", category, err))
		}

		p.progress(ctx, msg.JobID, unit, pubsub.StageExtract, 0)
		records, err := extract.Parse(doc.Body, schema, category)
		if err != nil {
			fail(pubsub.StageExtract, fmt.Sprintf("%s: %v", category, err))
			continue
		}

		p.progress(ctx, msg.JobID, unit, pubsub.StageTransform, 0)
		rows, warnings := transform.Normalize(records, transform.Meta{
			Sport:       unit.Sport,
			Season:      msg.Season,
			Category:    category,
			SourceJobID: msg.JobID,
			FetchedAt:   doc.FetchedAt,
		})
		for _, w := range warnings {
			warn(pubsub.StageTransform, fmt.Sprintf("%s: %s", category, w))
		}

		p.progress(ctx, msg.JobID, unit, pubsub.StageLoad, 0)
		counts, recErrs, err := p.loader.Upsert(ctx, unit.Sport, rows)
		for _, re := range recErrs {
			warn(pubsub.StageLoad, fmt.Sprintf("%s: %s", category, re))
		}
		if err != nil {
			fail(pubsub.StageLoad, fmt.Sprintf("%s: %v", category, err))
			return res
		}
		res.records += counts.Inserted + counts.Updated
	}

	p.progress(ctx, msg.JobID, unit, pubsub.StageDone, res.records)
	return res
}

func (p *Processor) progress(ctx context.Context, jobID int64, unit queue.UnitSpec, stage string, records int) {
	p.publish(ctx, &pubsub.ProgressMessage{
		Type:    "unit",
		JobID:   jobID,
		Sport:   unit.Sport,
		Source:  unit.Source,
		Stage:   stage,
		Status:  model.JobStatusRunning,
		Records: records,
	})
}

func (p *Processor) publish(ctx context.Context, msg *pubsub.ProgressMessage) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishProgress(ctx, msg); err != nil {
		p.log.Warn("progress publish failed", zap.Error(err))
	}
}

// cancelRequested polls the cancel flag. A poll failure is logged and
// treated as "keep going" so a flaky read cannot abort the job.
func (p *Processor) cancelRequested(jobID int64) bool {
	stop, err := p.jobRepo.CancelRequested(jobID)
	if err != nil {
		p.log.Warn("cancel poll failed", zap.Int64("job_id", jobID), zap.Error(err))
		return false
	}
	return stop
}

// finalStatus folds unit outcomes into the job's terminal status. Every run
// ends in exactly one of these; a job succeeds only when every unit ran
// clean, so skipped units cap the outcome at partially_failed.
func finalStatus(ran, failed, skipped int) string {
	switch {
	case ran > 0 && failed == 0 && skipped == 0:
		return model.JobStatusSucceeded
	case ran-failed > 0:
		return model.JobStatusPartiallyFailed
	default:
		return model.JobStatusFailed
	}
}

func expandEndpoint(template, category, season string) string {
	out := strings.ReplaceAll(template, "{category}", category)
	return strings.ReplaceAll(out, "{season}", season)
}
