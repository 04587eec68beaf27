package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/analysis"
	"github.com/statside/sportschat/internal/chart"
	"github.com/statside/sportschat/internal/extract"
	"github.com/statside/sportschat/internal/model/dto"
	"github.com/statside/sportschat/internal/repository"
)

var (
	ErrNoData           = errors.New("no stats stored for that selection")
	ErrUnknownMetric    = errors.New("unknown stat category")
	ErrUnknownChartType = errors.New("unknown chart type")
)

const (
	ChartTypeLeaderboard = "leaderboard"
	ChartTypeTrend       = "trend"
)

// StatsService serves the direct analysis endpoints: the same deterministic
// computations the chat dispatcher uses, addressable without a conversation.
type StatsService struct {
	statsRepo *repository.StatsRepository
	renderer  *chart.Renderer
	cfg       *config.Config
	log       *zap.Logger
}

func NewStatsService(
	statsRepo *repository.StatsRepository,
	renderer *chart.Renderer,
	cfg *config.Config,
	log *zap.Logger,
) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		renderer:  renderer,
		cfg:       cfg,
		log:       log,
	}
}

// Analyze ranks players on one metric for one season. An empty season means
// the latest stored season; an empty metric means the sport's headline
// category; limit <= 0 means the configured default.
func (s *StatsService) Analyze(sport, season, metric string, limit int) (*dto.AnalyzeResponse, error) {
	sch, err := extract.SchemaFor(sport)
	if err != nil {
		return nil, err
	}
	metric, err = resolveMetric(sch, metric)
	if err != nil {
		return nil, err
	}
	season, err = s.seasonOrLatest(sport, season)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.Chart.TopN
	}

	rows, err := s.statsRepo.ListByCategory(sport, season, metric)
	if err != nil {
		return nil, err
	}
	entries := analysis.Leaderboard(rows, limit)
	if len(entries) == 0 {
		return nil, ErrNoData
	}

	out := make([]dto.LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = dto.LeaderboardEntry{
			Rank:       e.Rank,
			PlayerName: e.PlayerName,
			TeamName:   e.TeamName,
			Value:      e.Value,
		}
	}
	return &dto.AnalyzeResponse{
		Sport:   sport,
		Season:  season,
		Metric:  metric,
		Entries: out,
	}, nil
}

// Trends averages one metric per season across all stored seasons.
func (s *StatsService) Trends(sport, metric string) (*dto.TrendsResponse, error) {
	sch, err := extract.SchemaFor(sport)
	if err != nil {
		return nil, err
	}
	metric, err = resolveMetric(sch, metric)
	if err != nil {
		return nil, err
	}

	rows, err := s.statsRepo.ListByMetricAllSeasons(sport, metric)
	if err != nil {
		return nil, err
	}
	points := analysis.TrendSeries(rows)
	if len(points) == 0 {
		return nil, ErrNoData
	}

	out := make([]dto.SeasonPoint, len(points))
	for i, p := range points {
		out[i] = dto.SeasonPoint{Season: p.Season, Value: p.Value, Count: p.Count}
	}
	return &dto.TrendsResponse{Sport: sport, Metric: metric, Points: out}, nil
}

// Visualize renders a chart for the selection and returns it base64-encoded.
func (s *StatsService) Visualize(sport, season, metric, chartType string) (*dto.VisualizeResponse, error) {
	sch, err := extract.SchemaFor(sport)
	if err != nil {
		return nil, err
	}
	metric, err = resolveMetric(sch, metric)
	if err != nil {
		return nil, err
	}

	var image string
	switch chartType {
	case ChartTypeLeaderboard, "":
		chartType = ChartTypeLeaderboard
		season, err = s.seasonOrLatest(sport, season)
		if err != nil {
			return nil, err
		}
		rows, err := s.statsRepo.ListByCategory(sport, season, metric)
		if err != nil {
			return nil, err
		}
		entries := analysis.Leaderboard(rows, s.cfg.Chart.TopN)
		title := fmt.Sprintf("%s %s leaders, %s", titleWord(sport), metric, season)
		image, err = s.renderer.LeaderboardPNG(title, entries)
		if err != nil {
			if errors.Is(err, chart.ErrNoData) {
				return nil, ErrNoData
			}
			return nil, err
		}
	case ChartTypeTrend:
		rows, err := s.statsRepo.ListByMetricAllSeasons(sport, metric)
		if err != nil {
			return nil, err
		}
		points := analysis.TrendSeries(rows)
		title := fmt.Sprintf("%s %s trend", titleWord(sport), metric)
		image, err = s.renderer.TrendPNG(title, points)
		if err != nil {
			if errors.Is(err, chart.ErrNoData) {
				return nil, ErrNoData
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChartType, chartType)
	}

	return &dto.VisualizeResponse{
		Sport:     sport,
		Season:    season,
		ChartType: chartType,
		Image:     image,
	}, nil
}

func (s *StatsService) seasonOrLatest(sport, season string) (string, error) {
	if season != "" {
		return season, nil
	}
	latest, err := s.statsRepo.LatestSeason(sport)
	if err != nil {
		return "", err
	}
	if latest == "" {
		return "", ErrNoData
	}
	return latest, nil
}

// resolveMetric validates the metric against the sport's schema, defaulting
// to the headline category when empty.
func resolveMetric(sch extract.Schema, metric string) (string, error) {
	categories := sch.Categories()
	if metric == "" {
		return categories[0], nil
	}
	for _, c := range categories {
		if c == metric {
			return metric, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
}
