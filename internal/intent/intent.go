// Package intent classifies chat messages against a fixed grammar. It is
// pure keyword matching: no model call, same message in, same intent out.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/statside/sportschat/internal/model"
)

type Kind string

const (
	KindLookup       Kind = "lookup"
	KindLeaderboard  Kind = "leaderboard"
	KindTrend        Kind = "trend"
	KindComparison   Kind = "comparison"
	KindUnrecognized Kind = "unrecognized"
)

// Intent is a tagged variant: exactly the field matching Kind is set, and
// its parameters were validated at parse time.
type Intent struct {
	Kind        Kind
	Lookup      *Lookup
	Leaderboard *Leaderboard
	Trend       *Trend
	Comparison  *Comparison
}

type Lookup struct {
	Sport  string
	Season string
	Metric string
	Player string
}

type Leaderboard struct {
	Sport  string
	Season string
	Metric string
	Limit  int
}

type Trend struct {
	Sport  string
	Metric string
}

type Comparison struct {
	Sport   string
	Season  string
	PlayerA string
	PlayerB string
}

const DefaultLeaderboardLimit = 10

var (
	seasonRe = regexp.MustCompile(`20\d{2}(?:-\d{2})?`)
	topNRe   = regexp.MustCompile(`top\s+(\d+)`)
	// compare A and B / compare A with B / compare A to B
	compareRe = regexp.MustCompile(`compare\s+(.+?)\s+(?:and|with|to)\s+(.+)`)
	// A vs B / A versus B
	versusRe = regexp.MustCompile(`(.+?)\s+(?:vs\.?|versus)\s+(.+)`)
	// stats for X / stat line for X
	statsForRe = regexp.MustCompile(`stats?(?:\s+line)?\s+for\s+(.+)`)
	// how many <metric> did X ... / how many <metric> for X
	howManyRe = regexp.MustCompile(`how many\s+\w+\s+(?:did|does|for)\s+(.+)`)
)

// metricWords maps grammar keywords to the canonical stat category, with the
// sport each category belongs to.
var metricWords = []struct {
	word   string
	metric string
	sport  string
}{
	{"scorers", "points", model.SportBasketball},
	{"scorer", "points", model.SportBasketball},
	{"scoring", "points", model.SportBasketball},
	{"points", "points", model.SportBasketball},
	{"rebounders", "rebounds", model.SportBasketball},
	{"rebounds", "rebounds", model.SportBasketball},
	{"rebounding", "rebounds", model.SportBasketball},
	{"boards", "rebounds", model.SportBasketball},
	{"assists", "assists", model.SportBasketball},
	{"steals", "steals", model.SportBasketball},
	{"blocks", "blocks", model.SportBasketball},
	{"passers", "passing", model.SportFootball},
	{"passing", "passing", model.SportFootball},
	{"rushers", "rushing", model.SportFootball},
	{"rushing", "rushing", model.SportFootball},
	{"receivers", "receiving", model.SportFootball},
	{"receiving", "receiving", model.SportFootball},
	{"tackles", "tackles", model.SportFootball},
	{"sacks", "sacks", model.SportFootball},
}

// Classify parses a chat message against the grammar. Variants whose
// required parameters cannot be extracted fall through to unrecognized.
func Classify(message string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return Intent{Kind: KindUnrecognized}
	}

	sport := detectSport(lower)
	season := seasonRe.FindString(lower)
	metric, metricSport := detectMetric(lower)
	if sport == "" {
		sport = metricSport
	}

	if c := parseComparison(lower, sport, season); c != nil {
		return Intent{Kind: KindComparison, Comparison: c}
	}

	if lb := parseLeaderboard(lower, sport, season, metric); lb != nil {
		return Intent{Kind: KindLeaderboard, Leaderboard: lb}
	}

	if hasAny(lower, "trend", "over time", "across seasons") && sport != "" {
		m := metric
		if m == "" {
			m = defaultMetric(sport)
		}
		return Intent{Kind: KindTrend, Trend: &Trend{Sport: sport, Metric: m}}
	}

	if lk := parseLookup(lower, sport, season, metric); lk != nil {
		return Intent{Kind: KindLookup, Lookup: lk}
	}

	return Intent{Kind: KindUnrecognized}
}

func detectSport(lower string) string {
	if strings.Contains(lower, "basketball") || strings.Contains(lower, "hoops") {
		return model.SportBasketball
	}
	if strings.Contains(lower, "football") {
		return model.SportFootball
	}
	return ""
}

func detectMetric(lower string) (metric, sport string) {
	for _, mw := range metricWords {
		if strings.Contains(lower, mw.word) {
			return mw.metric, mw.sport
		}
	}
	return "", ""
}

// defaultMetric picks the headline category when the message names none.
func defaultMetric(sport string) string {
	if sport == model.SportFootball {
		return "passing"
	}
	return "points"
}

func parseLeaderboard(lower, sport, season, metric string) *Leaderboard {
	m := topNRe.FindStringSubmatch(lower)
	if m == nil && !hasAny(lower, "leaderboard", "leaders", "best") {
		return nil
	}
	if metric == "" || sport == "" {
		return nil
	}
	limit := DefaultLeaderboardLimit
	if m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			limit = n
		}
	}
	return &Leaderboard{Sport: sport, Season: season, Metric: metric, Limit: limit}
}

func parseComparison(lower, sport, season string) *Comparison {
	var a, b string
	if m := compareRe.FindStringSubmatch(lower); m != nil {
		a, b = m[1], m[2]
	} else if m := versusRe.FindStringSubmatch(lower); m != nil && hasAny(lower, "vs", "versus") {
		a, b = m[1], m[2]
	} else {
		return nil
	}

	a = cleanPlayer(a)
	b = cleanPlayer(b)
	if a == "" || b == "" {
		return nil
	}
	if sport == "" {
		sport = model.SportBasketball
	}
	return &Comparison{Sport: sport, Season: season, PlayerA: a, PlayerB: b}
}

func parseLookup(lower, sport, season, metric string) *Lookup {
	var player string
	if m := statsForRe.FindStringSubmatch(lower); m != nil {
		player = m[1]
	} else if m := howManyRe.FindStringSubmatch(lower); m != nil {
		player = m[1]
	} else {
		return nil
	}

	player = cleanPlayer(player)
	if player == "" {
		return nil
	}
	if sport == "" {
		sport = model.SportBasketball
	}
	return &Lookup{Sport: sport, Season: season, Metric: metric, Player: player}
}

// cleanPlayer strips grammar noise (sport, season, trailing verbs) from an
// extracted player name fragment.
func cleanPlayer(s string) string {
	s = seasonRe.ReplaceAllString(s, "")
	for _, noise := range []string{
		"in basketball", "in football", "basketball", "football",
		"average", "score", "have", "get", "this season", " in ", " for ",
	} {
		s = strings.ReplaceAll(s, noise, " ")
	}
	s = strings.Trim(strings.Join(strings.Fields(s), " "), " ?.!,")
	return s
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
