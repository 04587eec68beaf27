// Package extract parses raw stat pages into typed intermediate records.
// Parsing is pure: the same document bytes always yield the same records.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// RawRecord is one table row before normalization. All fields are raw cell
// text; the transformer owns cleaning and type coercion.
type RawRecord struct {
	PlayerName  string
	TeamName    string
	Position    string
	GamesPlayed string
	Value       string
	Row         int
}

// ParseError is fatal to the document: a required identity column or field
// is missing. Offset is the 1-based data row, or 0 for header problems.
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("parse error at row %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// Parse extracts stat records for one category page. It fails the whole
// document when the player or team column cannot be located, or when a data
// row has an empty identity cell. Missing optional cells yield empty strings.
func Parse(body []byte, schema Schema, category string) ([]RawRecord, error) {
	valueHeaders, ok := schema.ValueHeaders[category]
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("unknown category %q for sport %s", category, schema.Sport)}
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid html: %v", err)}
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil, &ParseError{Reason: "no stats table in document"}
	}

	rows := collectRows(table)
	if len(rows) < 2 {
		return nil, &ParseError{Reason: "stats table has no data rows"}
	}

	headers := cellTexts(rows[0])
	playerCol := findColumn(headers, schema.PlayerHeaders)
	if playerCol < 0 {
		return nil, &ParseError{Reason: "player column not found"}
	}
	teamCol := findColumn(headers, schema.TeamHeaders)
	if teamCol < 0 {
		return nil, &ParseError{Reason: "team column not found"}
	}
	valueCol := findColumn(headers, valueHeaders)
	if valueCol < 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("value column for %q not found", category)}
	}
	gamesCol := findColumn(headers, schema.GamesHeaders)
	posCol := findColumn(headers, schema.PositionHeaders)

	records := make([]RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cells := cellTexts(row)
		rowNum := i + 1

		player := cellAt(cells, playerCol)
		team := cellAt(cells, teamCol)
		if strings.TrimSpace(player) == "" {
			return nil, &ParseError{Reason: "missing player name", Offset: rowNum}
		}
		if strings.TrimSpace(team) == "" {
			return nil, &ParseError{Reason: "missing team name", Offset: rowNum}
		}

		records = append(records, RawRecord{
			PlayerName:  player,
			TeamName:    team,
			Position:    cellAt(cells, posCol),
			GamesPlayed: cellAt(cells, gamesCol),
			Value:       cellAt(cells, valueCol),
			Row:         rowNum,
		})
	}

	return records, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func collectRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func cellTexts(row *html.Node) []string {
	var cells []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, nodeText(c))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// findColumn matches header cells case-insensitively against synonyms,
// returning the first matching column index or -1.
func findColumn(headers, synonyms []string) int {
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		for _, syn := range synonyms {
			if lower == syn {
				return i
			}
		}
	}
	return -1
}

func cellAt(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}
