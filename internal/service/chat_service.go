package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/analysis"
	"github.com/statside/sportschat/internal/chart"
	"github.com/statside/sportschat/internal/intent"
	"github.com/statside/sportschat/internal/llm"
	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/model/dto"
	"github.com/statside/sportschat/internal/repository"
)

var ErrSessionNotFound = errors.New("chat session not found")

// User-facing replies form a bounded set. No internal error text ever
// reaches the chat transcript.
const (
	replyNoData       = "I could not find any stats matching that question. Try naming a sport, a player, or a stat category."
	replyUnrecognized = "I did not understand that question. You can ask things like \"top 5 scorers in basketball\", \"stats for a player\", or \"compare two players\"."
)

// ChatService dispatches chat messages: classify against the intent grammar,
// answer recognized intents from stored stats, and hand the rest to the
// optional model backend with a deterministic fallback.
type ChatService struct {
	chatRepo  *repository.ChatRepository
	statsRepo *repository.StatsRepository
	renderer  *chart.Renderer
	backend   llm.Backend // nil when no model is configured
	log       *zap.Logger
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	statsRepo *repository.StatsRepository,
	renderer *chart.Renderer,
	backend llm.Backend,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		chatRepo:  chatRepo,
		statsRepo: statsRepo,
		renderer:  renderer,
		backend:   backend,
		log:       log,
	}
}

// Handle runs one chat turn: persist the user message, produce a reply, and
// persist that too. A missing session ID starts a new session.
func (s *ChatService) Handle(ctx context.Context, sessionID, text string) (*dto.ChatResponse, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session, created, err := s.chatRepo.GetOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("chat session started", zap.String("session_id", session.SessionID))
	}

	if err := s.chatRepo.AppendMessage(&model.ChatMessage{
		SessionID: session.SessionID,
		Role:      model.RoleUser,
		Content:   text,
	}); err != nil {
		return nil, err
	}

	it := intent.Classify(text)
	reply, chartB64 := s.answer(ctx, it, text)

	if err := s.chatRepo.AppendMessage(&model.ChatMessage{
		SessionID: session.SessionID,
		Role:      model.RoleAssistant,
		Content:   reply,
	}); err != nil {
		return nil, err
	}

	return &dto.ChatResponse{
		SessionID: session.SessionID,
		Reply:     reply,
		Chart:     chartB64,
	}, nil
}

// History returns the full transcript of a session in order.
func (s *ChatService) History(sessionID string) (*dto.SessionHistoryResponse, error) {
	session, err := s.chatRepo.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	messages, err := s.chatRepo.History(sessionID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ChatMessageItem, len(messages))
	for i, m := range messages {
		items[i] = dto.ChatMessageItem{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		}
	}
	return &dto.SessionHistoryResponse{
		SessionID: session.SessionID,
		CreatedAt: session.CreatedAt,
		Messages:  items,
	}, nil
}

// answer produces the reply text and an optional chart for a classified
// intent. Data and rendering failures degrade to replyNoData; they are never
// chat-fatal.
func (s *ChatService) answer(ctx context.Context, it intent.Intent, text string) (reply, chartB64 string) {
	switch it.Kind {
	case intent.KindLookup:
		return s.answerLookup(it.Lookup), ""
	case intent.KindLeaderboard:
		return s.answerLeaderboard(it.Leaderboard)
	case intent.KindTrend:
		return s.answerTrend(it.Trend)
	case intent.KindComparison:
		return s.answerComparison(it.Comparison), ""
	default:
		return s.answerUnrecognized(ctx, text), ""
	}
}

func (s *ChatService) answerLookup(lk *intent.Lookup) string {
	rows, err := s.statsRepo.ListByPlayer(lk.Sport, lk.Player, lk.Season)
	if err != nil {
		s.log.Error("lookup query failed", zap.Error(err))
		return replyNoData
	}
	if lk.Metric != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if r.Category == lk.Metric {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	if len(rows) == 0 {
		return replyNoData
	}

	var b strings.Builder
	name := rows[0].PlayerName
	if rows[0].TeamName != "" {
		fmt.Fprintf(&b, "%s (%s):", name, rows[0].TeamName)
	} else {
		fmt.Fprintf(&b, "%s:", name)
	}
	for _, r := range rows {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s: %s", r.Season, r.Category, formatValue(r.Value))
	}
	return b.String()
}

func (s *ChatService) answerLeaderboard(lb *intent.Leaderboard) (string, string) {
	season, err := s.resolveSeason(lb.Sport, lb.Season)
	if err != nil || season == "" {
		return replyNoData, ""
	}

	rows, err := s.statsRepo.ListByCategory(lb.Sport, season, lb.Metric)
	if err != nil {
		s.log.Error("leaderboard query failed", zap.Error(err))
		return replyNoData, ""
	}
	entries := analysis.Leaderboard(rows, lb.Limit)
	if len(entries) == 0 {
		return replyNoData, ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d %s in %s (%s):", len(entries), lb.Metric, lb.Sport, season)
	for _, e := range entries {
		b.WriteString("\n")
		if e.TeamName != "" {
			fmt.Fprintf(&b, "%d. %s (%s): %s", e.Rank, e.PlayerName, e.TeamName, formatValue(&e.Value))
		} else {
			fmt.Fprintf(&b, "%d. %s: %s", e.Rank, e.PlayerName, formatValue(&e.Value))
		}
	}

	title := fmt.Sprintf("%s %s leaders, %s", titleWord(lb.Sport), lb.Metric, season)
	img, err := s.renderer.LeaderboardPNG(title, entries)
	if err != nil {
		s.log.Warn("leaderboard chart skipped", zap.Error(err))
		img = ""
	}
	return b.String(), img
}

func (s *ChatService) answerTrend(tr *intent.Trend) (string, string) {
	rows, err := s.statsRepo.ListByMetricAllSeasons(tr.Sport, tr.Metric)
	if err != nil {
		s.log.Error("trend query failed", zap.Error(err))
		return replyNoData, ""
	}
	points := analysis.TrendSeries(rows)
	if len(points) == 0 {
		return replyNoData, ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Average %s in %s by season:", tr.Metric, tr.Sport)
	for _, p := range points {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s: %s (%d players)", p.Season, formatValue(&p.Value), p.Count)
	}

	title := fmt.Sprintf("%s %s trend", titleWord(tr.Sport), tr.Metric)
	img, err := s.renderer.TrendPNG(title, points)
	if err != nil {
		// Single-season data has nothing to plot; the text answer stands.
		img = ""
	}
	return b.String(), img
}

func (s *ChatService) answerComparison(cmp *intent.Comparison) string {
	rowsA, err := s.statsRepo.ListByPlayer(cmp.Sport, cmp.PlayerA, cmp.Season)
	if err != nil {
		s.log.Error("comparison query failed", zap.Error(err))
		return replyNoData
	}
	rowsB, err := s.statsRepo.ListByPlayer(cmp.Sport, cmp.PlayerB, cmp.Season)
	if err != nil {
		s.log.Error("comparison query failed", zap.Error(err))
		return replyNoData
	}
	if len(rowsA) == 0 && len(rowsB) == 0 {
		return replyNoData
	}

	nameA, nameB := cmp.PlayerA, cmp.PlayerB
	if len(rowsA) > 0 {
		nameA = rowsA[0].PlayerName
	}
	if len(rowsB) > 0 {
		nameB = rowsB[0].PlayerName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s:", nameA, nameB)
	for _, pair := range analysis.Compare(rowsA, rowsB) {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s: %s vs %s", pair.Category, formatValue(pair.ValueA), formatValue(pair.ValueB))
	}
	return b.String()
}

// answerUnrecognized tries the model backend, if configured, and otherwise
// (or on any backend failure) returns the fixed fallback reply.
func (s *ChatService) answerUnrecognized(ctx context.Context, text string) string {
	if s.backend == nil {
		return replyUnrecognized
	}
	answer, err := s.backend.Answer(ctx, s.dataContext(), text)
	if err != nil {
		s.log.Warn("model backend fallback", zap.Error(err))
		return replyUnrecognized
	}
	return answer
}

// dataContext summarizes what the store holds so the model backend answers
// from real data instead of inventing numbers.
func (s *ChatService) dataContext() string {
	var b strings.Builder
	b.WriteString("Stored college sports statistics:")
	for _, sport := range []string{model.SportBasketball, model.SportFootball} {
		count, err := s.statsRepo.Count(sport)
		if err != nil || count == 0 {
			continue
		}
		season, _ := s.statsRepo.LatestSeason(sport)
		fmt.Fprintf(&b, "\n- %s: %d stat records, latest season %s", sport, count, season)
	}
	return b.String()
}

func (s *ChatService) resolveSeason(sport, season string) (string, error) {
	if season != "" {
		return season, nil
	}
	return s.statsRepo.LatestSeason(sport)
}

// formatValue renders a stat value with one decimal place; nulls print as a
// dash.
func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
