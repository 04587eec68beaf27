package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/testutil"
)

func statRow(player string, value float64, sourceTime time.Time) model.StatRow {
	games := 30
	return model.StatRow{
		PlayerName:  player,
		TeamName:    "Test University",
		Season:      "2023-24",
		Category:    "points",
		Value:       &value,
		GamesPlayed: &games,
		SourceTime:  sourceTime,
	}
}

func TestStatsRepository_Upsert_Insert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)

	action, err := repo.Upsert(model.SportBasketball, statRow("Jane Doe", 21.5, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, UpsertInserted, action)

	count, err := repo.Count(model.SportBasketball)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStatsRepository_Upsert_NewerWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)
	base := time.Now()

	_, err := repo.Upsert(model.SportBasketball, statRow("Jane Doe", 21.5, base))
	require.NoError(t, err)

	action, err := repo.Upsert(model.SportBasketball, statRow("Jane Doe", 23.0, base.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, UpsertUpdated, action)

	rows, err := repo.ListByCategory(model.SportBasketball, "2023-24", "points")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 23.0, *rows[0].Value)
}

func TestStatsRepository_Upsert_OlderSkipped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)
	base := time.Now()

	_, err := repo.Upsert(model.SportBasketball, statRow("Jane Doe", 21.5, base))
	require.NoError(t, err)

	// Same timestamp is not strictly newer either.
	action, err := repo.Upsert(model.SportBasketball, statRow("Jane Doe", 19.0, base))
	require.NoError(t, err)
	assert.Equal(t, UpsertSkipped, action)

	action, err = repo.Upsert(model.SportBasketball, statRow("Jane Doe", 18.0, base.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, UpsertSkipped, action)

	rows, err := repo.ListByCategory(model.SportBasketball, "2023-24", "points")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 21.5, *rows[0].Value)
}

func TestStatsRepository_Upsert_UnknownSport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)

	_, err := repo.Upsert("cricket", statRow("Jane Doe", 21.5, time.Now()))
	assert.ErrorIs(t, err, ErrUnknownSport)
}

func TestStatsRepository_ListByPlayer_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)
	testutil.TestBasketballStat(t, db, testutil.WithPlayer("Jane Doe", "Test University"))

	rows, err := repo.ListByPlayer(model.SportBasketball, "jane doe", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0].PlayerName)
}

func TestStatsRepository_ListByPlayer_SeasonFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)
	testutil.TestBasketballStat(t, db,
		testutil.WithPlayer("Jane Doe", "Test University"),
		testutil.WithStat("2022-23", "points", 18.0))
	testutil.TestBasketballStat(t, db,
		testutil.WithPlayer("Jane Doe", "Test University"),
		testutil.WithStat("2023-24", "points", 21.5))

	rows, err := repo.ListByPlayer(model.SportBasketball, "Jane Doe", "2023-24")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2023-24", rows[0].Season)

	rows, err = repo.ListByPlayer(model.SportBasketball, "Jane Doe", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStatsRepository_LatestSeason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)

	season, err := repo.LatestSeason(model.SportBasketball)
	require.NoError(t, err)
	assert.Empty(t, season)

	testutil.TestBasketballStat(t, db, testutil.WithStat("2021-22", "points", 15.0))
	testutil.TestBasketballStat(t, db, testutil.WithStat("2023-24", "points", 17.0))
	testutil.TestBasketballStat(t, db, testutil.WithStat("2022-23", "points", 16.0))

	season, err = repo.LatestSeason(model.SportBasketball)
	require.NoError(t, err)
	assert.Equal(t, "2023-24", season)
}

func TestStatsRepository_FootballUpsertKeepsPosition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewStatsRepository(db)
	value := 2800.0
	row := model.StatRow{
		PlayerName: "John Smith",
		TeamName:   "Test University",
		Position:   "QB",
		Season:     "2023",
		Category:   "passing",
		Value:      &value,
		SourceTime: time.Now(),
	}

	action, err := repo.Upsert(model.SportFootball, row)
	require.NoError(t, err)
	assert.Equal(t, UpsertInserted, action)

	rows, err := repo.ListByCategory(model.SportFootball, "2023", "passing")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "QB", rows[0].Position)
}
