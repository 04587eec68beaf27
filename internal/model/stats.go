package model

import "time"

// Sport identifiers used across the pipeline.
const (
	SportBasketball = "basketball"
	SportFootball   = "football"
)

// BasketballStat holds one player's value for a single stat category in a
// season. Rows are unique on (player_name, season, category); the loader
// resolves conflicts by keeping the newer SourceTime.
type BasketballStat struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PlayerName  string    `gorm:"size:200;not null;uniqueIndex:idx_bball_key" json:"player_name"`
	TeamName    string    `gorm:"size:100" json:"team_name"`
	Season      string    `gorm:"size:9;not null;uniqueIndex:idx_bball_key;index" json:"season"`
	Category    string    `gorm:"size:50;not null;uniqueIndex:idx_bball_key" json:"category"`
	Value       *float64  `json:"value"`
	GamesPlayed *int      `json:"games_played,omitempty"`
	SourceJobID int64     `gorm:"index" json:"source_job_id"`
	SourceTime  time.Time `gorm:"not null" json:"source_time"`
	CreatedAt   time.Time `json:"created_at"`
}

func (BasketballStat) TableName() string {
	return "basketball_stats"
}

// FootballStat mirrors BasketballStat for football, with the player position
// carried along when the source publishes it.
type FootballStat struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PlayerName  string    `gorm:"size:200;not null;uniqueIndex:idx_fball_key" json:"player_name"`
	TeamName    string    `gorm:"size:100" json:"team_name"`
	Position    string    `gorm:"size:10" json:"position,omitempty"`
	Season      string    `gorm:"size:9;not null;uniqueIndex:idx_fball_key;index" json:"season"`
	Category    string    `gorm:"size:50;not null;uniqueIndex:idx_fball_key" json:"category"`
	Value       *float64  `json:"value"`
	GamesPlayed *int      `json:"games_played,omitempty"`
	SourceJobID int64     `gorm:"index" json:"source_job_id"`
	SourceTime  time.Time `gorm:"not null" json:"source_time"`
	CreatedAt   time.Time `json:"created_at"`
}

func (FootballStat) TableName() string {
	return "football_stats"
}

// StatRow is the sport-neutral view of a stat record used by the transformer,
// loader and analysis code. Repositories map it onto the per-sport tables.
type StatRow struct {
	PlayerName  string
	TeamName    string
	Position    string
	Season      string
	Category    string
	Value       *float64
	GamesPlayed *int
	SourceJobID int64
	SourceTime  time.Time
}
