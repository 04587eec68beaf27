package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/model"
)

// TestJob creates a scraping job row.
func TestJob(t *testing.T, db *gorm.DB, opts ...func(*model.ScrapingJob)) *model.ScrapingJob {
	t.Helper()

	job := &model.ScrapingJob{
		Scope:  "all",
		Season: "2023-24",
		Status: model.JobStatusQueued,
	}

	for _, opt := range opts {
		opt(job)
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}
	return job
}

// WithScope sets the job scope.
func WithScope(scope string) func(*model.ScrapingJob) {
	return func(j *model.ScrapingJob) {
		j.Scope = scope
	}
}

// WithStatus sets the job status.
func WithStatus(status string) func(*model.ScrapingJob) {
	return func(j *model.ScrapingJob) {
		j.Status = status
	}
}

// TestBasketballStat creates a basketball stat row.
func TestBasketballStat(t *testing.T, db *gorm.DB, opts ...func(*model.BasketballStat)) *model.BasketballStat {
	t.Helper()

	value := 15.0
	games := 30
	stat := &model.BasketballStat{
		PlayerName:  fmt.Sprintf("Test Player %d", time.Now().UnixNano()%100000),
		TeamName:    "Test University",
		Season:      "2023-24",
		Category:    "points",
		Value:       &value,
		GamesPlayed: &games,
		SourceTime:  time.Now(),
	}

	for _, opt := range opts {
		opt(stat)
	}

	if err := db.Create(stat).Error; err != nil {
		t.Fatalf("Failed to create test basketball stat: %v", err)
	}
	return stat
}

// WithPlayer sets the player and team names.
func WithPlayer(player, team string) func(*model.BasketballStat) {
	return func(s *model.BasketballStat) {
		s.PlayerName = player
		s.TeamName = team
	}
}

// WithStat sets season, category, and value.
func WithStat(season, category string, value float64) func(*model.BasketballStat) {
	return func(s *model.BasketballStat) {
		s.Season = season
		s.Category = category
		v := value
		s.Value = &v
	}
}

// TestFootballStat creates a football stat row.
func TestFootballStat(t *testing.T, db *gorm.DB, opts ...func(*model.FootballStat)) *model.FootballStat {
	t.Helper()

	value := 250.0
	games := 12
	stat := &model.FootballStat{
		PlayerName:  fmt.Sprintf("Test Player %d", time.Now().UnixNano()%100000),
		TeamName:    "Test University",
		Position:    "QB",
		Season:      "2023",
		Category:    "passing",
		Value:       &value,
		GamesPlayed: &games,
		SourceTime:  time.Now(),
	}

	for _, opt := range opts {
		opt(stat)
	}

	if err := db.Create(stat).Error; err != nil {
		t.Fatalf("Failed to create test football stat: %v", err)
	}
	return stat
}

// TestSession creates a chat session row.
func TestSession(t *testing.T, db *gorm.DB, sessionID string) *model.ChatSession {
	t.Helper()

	session := &model.ChatSession{SessionID: sessionID}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return session
}
