package extract

import (
	"errors"
	"fmt"

	"github.com/statside/sportschat/internal/model"
)

var ErrUnknownSport = errors.New("unknown sport")

// Schema describes how one sport's stat tables are laid out: which header
// names identify players and teams, and which column carries the value for
// each stat category.
type Schema struct {
	Sport           string
	PlayerHeaders   []string
	TeamHeaders     []string
	GamesHeaders    []string
	PositionHeaders []string
	// ValueHeaders maps a stat category to the header synonyms its value
	// column may use on the source page.
	ValueHeaders map[string][]string
}

// Categories lists this schema's stat categories in a stable order.
func (s Schema) Categories() []string {
	switch s.Sport {
	case model.SportBasketball:
		return []string{"points", "rebounds", "assists", "steals", "blocks"}
	case model.SportFootball:
		return []string{"passing", "rushing", "receiving", "tackles", "sacks"}
	}
	return nil
}

// SchemaFor returns the table schema for a sport.
func SchemaFor(sport string) (Schema, error) {
	switch sport {
	case model.SportBasketball:
		return Schema{
			Sport:         model.SportBasketball,
			PlayerHeaders: []string{"name", "player"},
			TeamHeaders:   []string{"team", "school"},
			GamesHeaders:  []string{"g", "gp", "games"},
			ValueHeaders: map[string][]string{
				"points":   {"ppg", "pts", "avg"},
				"rebounds": {"rpg", "reb", "avg"},
				"assists":  {"apg", "ast", "avg"},
				"steals":   {"spg", "stl", "avg"},
				"blocks":   {"bpg", "blk", "avg"},
			},
		}, nil
	case model.SportFootball:
		return Schema{
			Sport:           model.SportFootball,
			PlayerHeaders:   []string{"name", "player"},
			TeamHeaders:     []string{"team", "school"},
			GamesHeaders:    []string{"g", "gp", "games"},
			PositionHeaders: []string{"pos", "position"},
			ValueHeaders: map[string][]string{
				"passing":   {"yds", "pass yds", "yards"},
				"rushing":   {"yds", "rush yds", "yards"},
				"receiving": {"yds", "rec yds", "yards"},
				"tackles":   {"tot", "tackles", "total"},
				"sacks":     {"sacks", "sck"},
			},
		}, nil
	default:
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownSport, sport)
	}
}
