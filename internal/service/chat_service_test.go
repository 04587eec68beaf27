package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/chart"
	"github.com/statside/sportschat/internal/llm"
	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/repository"
	"github.com/statside/sportschat/internal/testutil"
)

type fakeBackend struct {
	answer string
	err    error
	calls  int
}

func (f *fakeBackend) Answer(ctx context.Context, contextText, question string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func setupChatService(t *testing.T, backend llm.Backend) (*ChatService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := NewChatService(
		repository.NewChatRepository(db),
		repository.NewStatsRepository(db),
		chart.NewRenderer(400, 300),
		backend,
		zap.NewNop(),
	)
	return svc, db, func() { testutil.CleanupTestDB(t, db) }
}

func seedScorers(t *testing.T, db *gorm.DB) {
	t.Helper()
	scores := map[string]float64{
		"Alice Adams": 24.1,
		"Beth Brown":  22.8,
		"Cara Clark":  21.0,
		"Dana Davis":  19.5,
		"Erin Evans":  18.7,
		"Faye Field":  17.2,
	}
	for player, value := range scores {
		testutil.TestBasketballStat(t, db,
			testutil.WithPlayer(player, "State"),
			testutil.WithStat("2023-24", "points", value))
	}
}

func TestChatService_Handle_TopScorers(t *testing.T) {
	svc, db, cleanup := setupChatService(t, nil)
	defer cleanup()

	seedScorers(t, db)

	resp, err := svc.Handle(context.Background(), "", "top 5 scorers in basketball")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID, "a new session gets an ID")

	assert.Contains(t, resp.Reply, "Top 5 points")
	assert.Contains(t, resp.Reply, "1. Alice Adams")
	assert.Contains(t, resp.Reply, "24.1")
	assert.Contains(t, resp.Reply, "5. Erin Evans")
	assert.NotContains(t, resp.Reply, "Faye Field", "limit cuts at five")
	assert.NotEmpty(t, resp.Chart, "leaderboard answers carry a chart")
}

func TestChatService_Handle_Deterministic(t *testing.T) {
	svc, db, cleanup := setupChatService(t, nil)
	defer cleanup()

	seedScorers(t, db)

	first, err := svc.Handle(context.Background(), "", "top 5 scorers in basketball")
	require.NoError(t, err)
	second, err := svc.Handle(context.Background(), "", "top 5 scorers in basketball")
	require.NoError(t, err)

	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, first.Chart, second.Chart)
}

func TestChatService_Handle_Lookup(t *testing.T) {
	svc, db, cleanup := setupChatService(t, nil)
	defer cleanup()

	testutil.TestBasketballStat(t, db,
		testutil.WithPlayer("Jane Doe", "State"),
		testutil.WithStat("2023-24", "points", 21.5))

	resp, err := svc.Handle(context.Background(), "", "stats for Jane Doe in basketball")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "Jane Doe")
	assert.Contains(t, resp.Reply, "points: 21.5")
}

func TestChatService_Handle_LookupNoData(t *testing.T) {
	svc, _, cleanup := setupChatService(t, nil)
	defer cleanup()

	resp, err := svc.Handle(context.Background(), "", "stats for Nobody Nowhere in basketball")
	require.NoError(t, err)
	assert.Equal(t, replyNoData, resp.Reply)
	assert.Empty(t, resp.Chart)
}

func TestChatService_Handle_Comparison(t *testing.T) {
	svc, db, cleanup := setupChatService(t, nil)
	defer cleanup()

	testutil.TestBasketballStat(t, db,
		testutil.WithPlayer("Jane Doe", "State"),
		testutil.WithStat("2023-24", "points", 21.5))
	testutil.TestBasketballStat(t, db,
		testutil.WithPlayer("Mary Major", "Tech"),
		testutil.WithStat("2023-24", "points", 19.0))

	resp, err := svc.Handle(context.Background(), "", "compare Jane Doe and Mary Major in basketball")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "Jane Doe vs Mary Major")
	assert.Contains(t, resp.Reply, "points: 21.5 vs 19.0")
}

func TestChatService_Handle_UnrecognizedWithoutBackend(t *testing.T) {
	svc, _, cleanup := setupChatService(t, nil)
	defer cleanup()

	resp, err := svc.Handle(context.Background(), "", "what's the weather like today")
	require.NoError(t, err)
	assert.Equal(t, replyUnrecognized, resp.Reply)
}

func TestChatService_Handle_UnrecognizedBackendAnswers(t *testing.T) {
	backend := &fakeBackend{answer: "Basketball season runs from November to April."}
	svc, _, cleanup := setupChatService(t, backend)
	defer cleanup()

	resp, err := svc.Handle(context.Background(), "", "when does the season start")
	require.NoError(t, err)
	assert.Equal(t, backend.answer, resp.Reply)
	assert.Equal(t, 1, backend.calls)
}

func TestChatService_Handle_BackendFailureDegrades(t *testing.T) {
	backend := &fakeBackend{err: llm.ErrUnavailable}
	svc, _, cleanup := setupChatService(t, backend)
	defer cleanup()

	resp, err := svc.Handle(context.Background(), "", "when does the season start")
	require.NoError(t, err, "a dead model backend is never chat-fatal")
	assert.Equal(t, replyUnrecognized, resp.Reply)
}

func TestChatService_Handle_RecognizedIntentSkipsBackend(t *testing.T) {
	backend := &fakeBackend{answer: "should not be used"}
	svc, db, cleanup := setupChatService(t, backend)
	defer cleanup()

	seedScorers(t, db)

	_, err := svc.Handle(context.Background(), "", "top 5 scorers in basketball")
	require.NoError(t, err)
	assert.Zero(t, backend.calls, "grammar hits never reach the model")
}

func TestChatService_Handle_SessionPersistence(t *testing.T) {
	svc, _, cleanup := setupChatService(t, nil)
	defer cleanup()

	ctx := context.Background()
	first, err := svc.Handle(ctx, "", "top 5 scorers in basketball")
	require.NoError(t, err)

	_, err = svc.Handle(ctx, first.SessionID, "stats for Jane Doe")
	require.NoError(t, err)

	history, err := svc.History(first.SessionID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 4, "two turns, user and assistant each")
	assert.Equal(t, model.RoleUser, history.Messages[0].Role)
	assert.Equal(t, "top 5 scorers in basketball", history.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, history.Messages[1].Role)
	assert.Equal(t, model.RoleUser, history.Messages[2].Role)
}

func TestChatService_History_NotFound(t *testing.T) {
	svc, _, cleanup := setupChatService(t, nil)
	defer cleanup()

	_, err := svc.History("no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestChatService_Handle_ErrorTextStaysInternal(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused to 10.0.0.1:11434")}
	svc, _, cleanup := setupChatService(t, backend)
	defer cleanup()

	resp, err := svc.Handle(context.Background(), "", "some question outside the grammar")
	require.NoError(t, err)
	assert.NotContains(t, resp.Reply, "10.0.0.1", "internal error details never reach the transcript")
}
