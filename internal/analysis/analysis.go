// Package analysis computes deterministic statistics over stored stat rows.
// Every function here is a pure function of its inputs.
package analysis

import (
	"sort"

	"github.com/statside/sportschat/internal/model"
)

// Entry is one leaderboard line.
type Entry struct {
	Rank       int
	PlayerName string
	TeamName   string
	Value      float64
}

// SeasonPoint aggregates one season for a trend series.
type SeasonPoint struct {
	Season string
	Value  float64 // mean of non-null values
	Count  int
}

// CategoryPair holds the two compared players' values for one category.
type CategoryPair struct {
	Category string
	ValueA   *float64
	ValueB   *float64
}

// Leaderboard ranks rows descending by value, breaking ties by player name
// ascending, and truncates to limit. Rows with null values are excluded.
func Leaderboard(rows []model.StatRow, limit int) []Entry {
	filtered := make([]model.StatRow, 0, len(rows))
	for _, r := range rows {
		if r.Value != nil {
			filtered = append(filtered, r)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		vi, vj := *filtered[i].Value, *filtered[j].Value
		if vi != vj {
			return vi > vj
		}
		return filtered[i].PlayerName < filtered[j].PlayerName
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	entries := make([]Entry, len(filtered))
	for i, r := range filtered {
		entries[i] = Entry{
			Rank:       i + 1,
			PlayerName: r.PlayerName,
			TeamName:   r.TeamName,
			Value:      *r.Value,
		}
	}
	return entries
}

// TrendSeries groups rows by season and averages the non-null values,
// returning points in ascending season order.
func TrendSeries(rows []model.StatRow) []SeasonPoint {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		if r.Value == nil {
			continue
		}
		sums[r.Season] += *r.Value
		counts[r.Season]++
	}

	seasons := make([]string, 0, len(sums))
	for season := range sums {
		seasons = append(seasons, season)
	}
	sort.Strings(seasons)

	points := make([]SeasonPoint, len(seasons))
	for i, season := range seasons {
		points[i] = SeasonPoint{
			Season: season,
			Value:  sums[season] / float64(counts[season]),
			Count:  counts[season],
		}
	}
	return points
}

// Compare pairs two players' rows by category. Categories present for either
// player appear, sorted by name; a player missing a category contributes nil.
func Compare(rowsA, rowsB []model.StatRow) []CategoryPair {
	byCatA := make(map[string]*float64)
	for _, r := range rowsA {
		byCatA[r.Category] = r.Value
	}
	byCatB := make(map[string]*float64)
	for _, r := range rowsB {
		byCatB[r.Category] = r.Value
	}

	seen := make(map[string]bool)
	var categories []string
	for c := range byCatA {
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	for c := range byCatB {
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	pairs := make([]CategoryPair, len(categories))
	for i, c := range categories {
		pairs[i] = CategoryPair{Category: c, ValueA: byCatA[c], ValueB: byCatB[c]}
	}
	return pairs
}
