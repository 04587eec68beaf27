package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/model"
)

// UpsertAction says what a single upsert did to the store.
type UpsertAction int

const (
	UpsertInserted UpsertAction = iota
	UpsertUpdated
	UpsertSkipped
)

var ErrUnknownSport = errors.New("unknown sport")

// StatsRepository maps sport-neutral StatRows onto the per-sport tables.
// The loader is its only writer; analysis code reads through it.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Upsert applies newest-wins conflict resolution on the
// (player_name, season, category) key. An incoming row replaces the stored
// one only when its SourceTime is strictly newer; otherwise it is skipped.
// Each call is atomic for its single record.
func (r *StatsRepository) Upsert(sport string, row model.StatRow) (UpsertAction, error) {
	switch sport {
	case model.SportBasketball:
		return r.upsertBasketball(row)
	case model.SportFootball:
		return r.upsertFootball(row)
	default:
		return UpsertSkipped, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
}

func (r *StatsRepository) upsertBasketball(row model.StatRow) (UpsertAction, error) {
	action := UpsertSkipped
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.BasketballStat
		err := tx.Where("player_name = ? AND season = ? AND category = ?",
			row.PlayerName, row.Season, row.Category).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			action = UpsertInserted
			return tx.Create(&model.BasketballStat{
				PlayerName:  row.PlayerName,
				TeamName:    row.TeamName,
				Season:      row.Season,
				Category:    row.Category,
				Value:       row.Value,
				GamesPlayed: row.GamesPlayed,
				SourceJobID: row.SourceJobID,
				SourceTime:  row.SourceTime,
			}).Error
		}
		if err != nil {
			return err
		}
		if !row.SourceTime.After(existing.SourceTime) {
			action = UpsertSkipped
			return nil
		}
		action = UpsertUpdated
		existing.TeamName = row.TeamName
		existing.Value = row.Value
		existing.GamesPlayed = row.GamesPlayed
		existing.SourceJobID = row.SourceJobID
		existing.SourceTime = row.SourceTime
		return tx.Save(&existing).Error
	})
	if err != nil {
		return UpsertSkipped, err
	}
	return action, nil
}

func (r *StatsRepository) upsertFootball(row model.StatRow) (UpsertAction, error) {
	action := UpsertSkipped
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.FootballStat
		err := tx.Where("player_name = ? AND season = ? AND category = ?",
			row.PlayerName, row.Season, row.Category).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			action = UpsertInserted
			return tx.Create(&model.FootballStat{
				PlayerName:  row.PlayerName,
				TeamName:    row.TeamName,
				Position:    row.Position,
				Season:      row.Season,
				Category:    row.Category,
				Value:       row.Value,
				GamesPlayed: row.GamesPlayed,
				SourceJobID: row.SourceJobID,
				SourceTime:  row.SourceTime,
			}).Error
		}
		if err != nil {
			return err
		}
		if !row.SourceTime.After(existing.SourceTime) {
			action = UpsertSkipped
			return nil
		}
		action = UpsertUpdated
		existing.TeamName = row.TeamName
		existing.Position = row.Position
		existing.Value = row.Value
		existing.GamesPlayed = row.GamesPlayed
		existing.SourceJobID = row.SourceJobID
		existing.SourceTime = row.SourceTime
		return tx.Save(&existing).Error
	})
	if err != nil {
		return UpsertSkipped, err
	}
	return action, nil
}

// ListByCategory returns all rows for one (sport, season, category).
func (r *StatsRepository) ListByCategory(sport, season, category string) ([]model.StatRow, error) {
	switch sport {
	case model.SportBasketball:
		var stats []model.BasketballStat
		err := r.db.Where("season = ? AND category = ?", season, category).
			Order("player_name ASC").Find(&stats).Error
		if err != nil {
			return nil, err
		}
		rows := make([]model.StatRow, len(stats))
		for i, s := range stats {
			rows[i] = basketballRow(s)
		}
		return rows, nil
	case model.SportFootball:
		var stats []model.FootballStat
		err := r.db.Where("season = ? AND category = ?", season, category).
			Order("player_name ASC").Find(&stats).Error
		if err != nil {
			return nil, err
		}
		rows := make([]model.StatRow, len(stats))
		for i, s := range stats {
			rows[i] = footballRow(s)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
}

// ListByPlayer returns all rows for a player, across seasons when season is
// empty. The name match is case-insensitive: chat lookups arrive lowercased.
func (r *StatsRepository) ListByPlayer(sport, player, season string) ([]model.StatRow, error) {
	switch sport {
	case model.SportBasketball:
		var stats []model.BasketballStat
		q := r.db.Where("LOWER(player_name) = LOWER(?)", player)
		if season != "" {
			q = q.Where("season = ?", season)
		}
		if err := q.Order("season ASC, category ASC").Find(&stats).Error; err != nil {
			return nil, err
		}
		rows := make([]model.StatRow, len(stats))
		for i, s := range stats {
			rows[i] = basketballRow(s)
		}
		return rows, nil
	case model.SportFootball:
		var stats []model.FootballStat
		q := r.db.Where("LOWER(player_name) = LOWER(?)", player)
		if season != "" {
			q = q.Where("season = ?", season)
		}
		if err := q.Order("season ASC, category ASC").Find(&stats).Error; err != nil {
			return nil, err
		}
		rows := make([]model.StatRow, len(stats))
		for i, s := range stats {
			rows[i] = footballRow(s)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
}

// ListByMetricAllSeasons returns every row for one (sport, category) across
// all seasons, for trend aggregation.
func (r *StatsRepository) ListByMetricAllSeasons(sport, category string) ([]model.StatRow, error) {
	switch sport {
	case model.SportBasketball:
		var stats []model.BasketballStat
		err := r.db.Where("category = ?", category).
			Order("season ASC, player_name ASC").Find(&stats).Error
		if err != nil {
			return nil, err
		}
		rows := make([]model.StatRow, len(stats))
		for i, s := range stats {
			rows[i] = basketballRow(s)
		}
		return rows, nil
	case model.SportFootball:
		var stats []model.FootballStat
		err := r.db.Where("category = ?", category).
			Order("season ASC, player_name ASC").Find(&stats).Error
		if err != nil {
			return nil, err
		}
		rows := make([]model.StatRow, len(stats))
		for i, s := range stats {
			rows[i] = footballRow(s)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
}

// LatestSeason returns the most recent season with stored rows for a sport,
// or empty when the table is empty.
func (r *StatsRepository) LatestSeason(sport string) (string, error) {
	var season string
	var err error
	switch sport {
	case model.SportBasketball:
		err = r.db.Model(&model.BasketballStat{}).
			Select("season").Order("season DESC").Limit(1).Scan(&season).Error
	case model.SportFootball:
		err = r.db.Model(&model.FootballStat{}).
			Select("season").Order("season DESC").Limit(1).Scan(&season).Error
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
	return season, err
}

// Count returns the stored row count for a sport.
func (r *StatsRepository) Count(sport string) (int64, error) {
	var count int64
	var err error
	switch sport {
	case model.SportBasketball:
		err = r.db.Model(&model.BasketballStat{}).Count(&count).Error
	case model.SportFootball:
		err = r.db.Model(&model.FootballStat{}).Count(&count).Error
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
	return count, err
}

func basketballRow(s model.BasketballStat) model.StatRow {
	return model.StatRow{
		PlayerName:  s.PlayerName,
		TeamName:    s.TeamName,
		Season:      s.Season,
		Category:    s.Category,
		Value:       s.Value,
		GamesPlayed: s.GamesPlayed,
		SourceJobID: s.SourceJobID,
		SourceTime:  s.SourceTime,
	}
}

func footballRow(s model.FootballStat) model.StatRow {
	return model.StatRow{
		PlayerName:  s.PlayerName,
		TeamName:    s.TeamName,
		Position:    s.Position,
		Season:      s.Season,
		Category:    s.Category,
		Value:       s.Value,
		GamesPlayed: s.GamesPlayed,
		SourceJobID: s.SourceJobID,
		SourceTime:  s.SourceTime,
	}
}
