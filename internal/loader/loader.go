// Package loader persists normalized stat rows idempotently. Re-running the
// same pass over unchanged source data is a no-op.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/repository"
)

// ErrStorageFatal marks connection-level storage failures that abort the
// unit. Per-record failures accumulate instead.
var ErrStorageFatal = errors.New("storage fatal")

// Counts summarizes what one upsert batch did.
type Counts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// RecordError is a non-fatal per-record load failure.
type RecordError struct {
	PlayerName string
	Category   string
	Message    string
}

func (e RecordError) String() string {
	return fmt.Sprintf("%s/%s: %s", e.PlayerName, e.Category, e.Message)
}

type Loader struct {
	stats *repository.StatsRepository
	log   *zap.Logger
}

func New(stats *repository.StatsRepository, log *zap.Logger) *Loader {
	return &Loader{stats: stats, log: log}
}

// Upsert applies rows in source order so newest-wins comparisons stay stable.
// Each record is atomic; a record failure is accumulated and the batch
// continues. Only connection-level failures return an error.
func (l *Loader) Upsert(ctx context.Context, sport string, rows []model.StatRow) (Counts, []RecordError, error) {
	var counts Counts
	var recErrs []RecordError

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return counts, recErrs, fmt.Errorf("%w: %v", ErrStorageFatal, err)
		}

		action, err := l.stats.Upsert(sport, row)
		if err != nil {
			if fatal(err) {
				return counts, recErrs, fmt.Errorf("%w: %v", ErrStorageFatal, err)
			}
			l.log.Warn("record upsert failed",
				zap.String("sport", sport),
				zap.String("player", row.PlayerName),
				zap.String("category", row.Category),
				zap.Error(err),
			)
			recErrs = append(recErrs, RecordError{
				PlayerName: row.PlayerName,
				Category:   row.Category,
				Message:    err.Error(),
			})
			continue
		}

		switch action {
		case repository.UpsertInserted:
			counts.Inserted++
		case repository.UpsertUpdated:
			counts.Updated++
		case repository.UpsertSkipped:
			counts.Skipped++
		}
	}

	return counts, recErrs, nil
}

func fatal(err error) bool {
	return errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
