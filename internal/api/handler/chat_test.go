package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/statside/sportschat/internal/chart"
	"github.com/statside/sportschat/internal/pkg/response"
	"github.com/statside/sportschat/internal/repository"
	"github.com/statside/sportschat/internal/service"
	"github.com/statside/sportschat/internal/testutil"
)

func setupChatHandler(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	svc := service.NewChatService(
		repository.NewChatRepository(db),
		repository.NewStatsRepository(db),
		chart.NewRenderer(400, 300),
		nil,
		zap.NewNop(),
	)
	h := NewChatHandler(svc)

	engine := gin.New()
	engine.POST("/api/v1/chat", h.Send)
	engine.GET("/api/v1/chat/sessions/:id", h.History)

	return engine, db, func() { testutil.CleanupTestDB(t, db) }
}

func TestChatHandler_Send(t *testing.T) {
	engine, db, cleanup := setupChatHandler(t)
	defer cleanup()

	testutil.TestBasketballStat(t, db,
		testutil.WithPlayer("Alice Adams", "State"),
		testutil.WithStat("2023-24", "points", 24.1))

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/chat",
		map[string]string{"message": "top 5 scorers in basketball"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["session_id"])
	assert.Contains(t, data["reply"], "Alice Adams")
}

func TestChatHandler_Send_MissingMessage(t *testing.T) {
	engine, _, cleanup := setupChatHandler(t)
	defer cleanup()

	_, resp := doJSON(t, engine, http.MethodPost, "/api/v1/chat", map[string]string{})
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestChatHandler_Send_ReusesSession(t *testing.T) {
	engine, _, cleanup := setupChatHandler(t)
	defer cleanup()

	_, resp := doJSON(t, engine, http.MethodPost, "/api/v1/chat",
		map[string]string{"message": "hello there"})
	sessionID := resp.Data.(map[string]interface{})["session_id"].(string)

	_, resp = doJSON(t, engine, http.MethodPost, "/api/v1/chat",
		map[string]string{"session_id": sessionID, "message": "another question"})
	assert.Equal(t, sessionID, resp.Data.(map[string]interface{})["session_id"])

	w, resp := doJSON(t, engine, http.MethodGet, "/api/v1/chat/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, response.CodeSuccess, resp.Code)

	messages := resp.Data.(map[string]interface{})["messages"].([]interface{})
	assert.Len(t, messages, 4)
}

func TestChatHandler_History_NotFound(t *testing.T) {
	engine, _, cleanup := setupChatHandler(t)
	defer cleanup()

	_, resp := doJSON(t, engine, http.MethodGet, "/api/v1/chat/sessions/nope", nil)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}
