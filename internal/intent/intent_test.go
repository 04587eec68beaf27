package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statside/sportschat/internal/model"
)

func TestClassify_Leaderboard(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Leaderboard
	}{
		{
			name:    "top n with sport and metric",
			message: "top 5 scorers in basketball",
			want:    Leaderboard{Sport: model.SportBasketball, Metric: "points", Limit: 5},
		},
		{
			name:    "metric implies sport",
			message: "top 10 rushers",
			want:    Leaderboard{Sport: model.SportFootball, Metric: "rushing", Limit: 10},
		},
		{
			name:    "leaders keyword uses default limit",
			message: "rebounds leaders in basketball",
			want:    Leaderboard{Sport: model.SportBasketball, Metric: "rebounds", Limit: DefaultLeaderboardLimit},
		},
		{
			name:    "with season",
			message: "top 3 scorers in basketball 2022-23",
			want:    Leaderboard{Sport: model.SportBasketball, Season: "2022-23", Metric: "points", Limit: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.message)
			require.Equal(t, KindLeaderboard, got.Kind)
			require.NotNil(t, got.Leaderboard)
			assert.Equal(t, tt.want, *got.Leaderboard)
		})
	}
}

func TestClassify_Lookup(t *testing.T) {
	got := Classify("stats for Jane Doe in basketball")
	require.Equal(t, KindLookup, got.Kind)
	require.NotNil(t, got.Lookup)
	assert.Equal(t, model.SportBasketball, got.Lookup.Sport)
	assert.Equal(t, "jane doe", got.Lookup.Player)

	got = Classify("how many points did jane doe average")
	require.Equal(t, KindLookup, got.Kind)
	require.NotNil(t, got.Lookup)
	assert.Equal(t, "points", got.Lookup.Metric)
	assert.Equal(t, "jane doe", got.Lookup.Player)
}

func TestClassify_Comparison(t *testing.T) {
	got := Classify("compare jane doe and mary major in basketball")
	require.Equal(t, KindComparison, got.Kind)
	require.NotNil(t, got.Comparison)
	assert.Equal(t, "jane doe", got.Comparison.PlayerA)
	assert.Equal(t, "mary major", got.Comparison.PlayerB)

	got = Classify("jane doe vs mary major")
	require.Equal(t, KindComparison, got.Kind)
	require.NotNil(t, got.Comparison)
	assert.Equal(t, "jane doe", got.Comparison.PlayerA)
	assert.Equal(t, "mary major", got.Comparison.PlayerB)
}

func TestClassify_Trend(t *testing.T) {
	got := Classify("points trend in basketball")
	require.Equal(t, KindTrend, got.Kind)
	require.NotNil(t, got.Trend)
	assert.Equal(t, model.SportBasketball, got.Trend.Sport)
	assert.Equal(t, "points", got.Trend.Metric)

	// Metric defaults to the sport's headline category.
	got = Classify("how has football changed over time")
	require.Equal(t, KindTrend, got.Kind)
	assert.Equal(t, "passing", got.Trend.Metric)
}

func TestClassify_Unrecognized(t *testing.T) {
	for _, message := range []string{
		"",
		"what's the weather like",
		"tell me a joke",
		"top 5", // leaderboard shape, but no metric or sport
	} {
		got := Classify(message)
		assert.Equal(t, KindUnrecognized, got.Kind, "message %q", message)
		assert.Nil(t, got.Lookup)
		assert.Nil(t, got.Leaderboard)
		assert.Nil(t, got.Trend)
		assert.Nil(t, got.Comparison)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	message := "top 5 scorers in basketball 2023-24"
	first := Classify(message)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(message))
	}
}
