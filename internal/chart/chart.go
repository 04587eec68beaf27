// Package chart renders analysis results to base64-encoded PNG images.
// Rendering is deterministic: identical inputs produce identical bytes.
package chart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/statside/sportschat/internal/analysis"
)

var ErrNoData = errors.New("no data to chart")

// Renderer holds the fixed output dimensions so every chart in one
// deployment has the same footprint.
type Renderer struct {
	width  int
	height int
}

func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 512
	}
	return &Renderer{width: width, height: height}
}

// LeaderboardPNG renders a horizontal-label bar chart of leaderboard entries.
func (r *Renderer) LeaderboardPNG(title string, entries []analysis.Entry) (string, error) {
	if len(entries) == 0 {
		return "", ErrNoData
	}

	bars := make([]gochart.Value, len(entries))
	maxVal := 0.0
	for i, e := range entries {
		bars[i] = gochart.Value{
			Value: e.Value,
			Label: e.PlayerName,
		}
		if e.Value > maxVal {
			maxVal = e.Value
		}
	}

	// go-chart refuses a zero y-span, which a single bar or uniform values
	// would otherwise produce; pin the range to a padded zero-based one.
	upper := maxVal * 1.1
	if upper <= 0 {
		upper = 1
	}

	bc := gochart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 48,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: upper},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render leaderboard chart: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// TrendPNG renders a line chart of per-season averages. At least two
// seasons are required: a single point has no x-range to plot.
func (r *Renderer) TrendPNG(title string, points []analysis.SeasonPoint) (string, error) {
	if len(points) < 2 {
		return "", ErrNoData
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]gochart.Tick, len(points))
	lo, hi := points[0].Value, points[0].Value
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Value
		ticks[i] = gochart.Tick{Value: float64(i), Label: p.Season}
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
	}

	// A flat series collapses the y-range, which go-chart rejects; pad it.
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}

	graph := gochart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{Ticks: ticks},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render trend chart: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
