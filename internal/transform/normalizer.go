// Package transform cleans and normalizes raw records into stat rows.
// This stage never fails a pipeline: bad values become warnings, not errors.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/statside/sportschat/internal/extract"
	"github.com/statside/sportschat/internal/model"
)

// Meta carries document-level context shared by all records of one page.
type Meta struct {
	Sport       string
	Season      string
	Category    string
	SourceJobID int64
	FetchedAt   time.Time
}

// Warning is a droppable field-level data quality issue. Warnings accumulate
// into the job's error list; they never abort the unit.
type Warning struct {
	Row     int
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d %s: %s", w.Row, w.Field, w.Message)
}

var titleCaser = cases.Title(language.English)

// nullValues are source markers for "no data". They coerce to null, never to
// zero.
var nullValues = map[string]bool{
	"":    true,
	"-":   true,
	"--":  true,
	"n/a": true,
	"na":  true,
}

// Normalize converts raw records into stat rows: identity fields are
// whitespace- and case-normalized, numeric strings coerced with explicit
// nulls, and duplicate (player, season, category) keys collapsed keeping the
// record seen last in source order.
func Normalize(records []extract.RawRecord, meta Meta) ([]model.StatRow, []Warning) {
	var warnings []Warning
	index := make(map[string]int, len(records))
	rows := make([]model.StatRow, 0, len(records))

	for _, rec := range records {
		player := NormalizeName(rec.PlayerName)
		team := NormalizeName(rec.TeamName)

		value, ok := coerceFloat(rec.Value)
		if !ok {
			warnings = append(warnings, Warning{
				Row:     rec.Row,
				Field:   "value",
				Message: fmt.Sprintf("unconvertible value %q dropped", rec.Value),
			})
			continue
		}

		games, ok := coerceInt(rec.GamesPlayed)
		if !ok {
			warnings = append(warnings, Warning{
				Row:     rec.Row,
				Field:   "games_played",
				Message: fmt.Sprintf("unconvertible games value %q treated as null", rec.GamesPlayed),
			})
			games = nil
		}

		row := model.StatRow{
			PlayerName:  player,
			TeamName:    team,
			Position:    strings.ToUpper(strings.TrimSpace(rec.Position)),
			Season:      meta.Season,
			Category:    meta.Category,
			Value:       value,
			GamesPlayed: games,
			SourceJobID: meta.SourceJobID,
			SourceTime:  meta.FetchedAt,
		}

		key := player + "\x00" + meta.Season + "\x00" + meta.Category
		if i, seen := index[key]; seen {
			// Later record in source order wins.
			rows[i] = row
			continue
		}
		index[key] = len(rows)
		rows = append(rows, row)
	}

	return rows, warnings
}

// NormalizeName collapses internal whitespace and repairs all-caps or
// all-lower identity fields. Mixed-case names pass through untouched so
// spellings like "LeBron" survive.
func NormalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}
	if s == strings.ToUpper(s) || s == strings.ToLower(s) {
		return titleCaser.String(strings.ToLower(s))
	}
	return s
}

// coerceFloat parses a numeric cell. Null markers return (nil, true);
// anything else unparseable returns (nil, false).
func coerceFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if nullValues[strings.ToLower(s)] {
		return nil, true
	}
	// Strip thousands separators the sources sometimes emit.
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func coerceInt(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if nullValues[strings.ToLower(s)] {
		return nil, true
	}
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &n, true
}
