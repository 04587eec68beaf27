package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/pkg/queue"
	"github.com/statside/sportschat/internal/pkg/response"
	"github.com/statside/sportschat/internal/repository"
	"github.com/statside/sportschat/internal/service"
	"github.com/statside/sportschat/internal/testutil"
)

func scrapeTestConfig() *config.Config {
	return &config.Config{
		Scraper: config.ScraperConfig{
			Season: "2023-24",
			Sources: []config.SourceConfig{
				{
					Name:    "ncaa",
					BaseURL: "https://stats.example.com",
					Paths: map[string]string{
						"basketball": "/basketball/{category}/{season}",
						"football":   "/football/{category}/{season}",
					},
				},
			},
		},
	}
}

func setupScrapeHandler(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	q := queue.NewQueue(client, "scrape_jobs")
	svc := service.NewScrapeService(repository.NewJobRepository(db), q, scrapeTestConfig(), zap.NewNop())
	h := NewScrapeHandler(svc)

	engine := gin.New()
	engine.POST("/api/v1/scrape/run", h.Run)
	engine.POST("/api/v1/scrape/ncaa/basketball", h.RunBasketball)
	engine.GET("/api/v1/scrape/jobs/:id", h.Status)
	engine.POST("/api/v1/scrape/jobs/:id/cancel", h.Cancel)

	cleanup := func() {
		client.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}
	return engine, cleanup
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestScrapeHandler_Run(t *testing.T) {
	engine, cleanup := setupScrapeHandler(t)
	defer cleanup()

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/scrape/run",
		map[string]string{"scope": "all"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Greater(t, data["job_id"].(float64), 0.0)
}

func TestScrapeHandler_Run_MissingScope(t *testing.T) {
	engine, cleanup := setupScrapeHandler(t)
	defer cleanup()

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/scrape/run", map[string]string{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestScrapeHandler_Run_UnknownScope(t *testing.T) {
	engine, cleanup := setupScrapeHandler(t)
	defer cleanup()

	_, resp := doJSON(t, engine, http.MethodPost, "/api/v1/scrape/run",
		map[string]string{"scope": "cricket"})
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestScrapeHandler_RunBasketball_ThenStatus(t *testing.T) {
	engine, cleanup := setupScrapeHandler(t)
	defer cleanup()

	_, resp := doJSON(t, engine, http.MethodPost, "/api/v1/scrape/ncaa/basketball", nil)
	jobID := int64(resp.Data.(map[string]interface{})["job_id"].(float64))

	w, resp := doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/scrape/jobs/%d", jobID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "basketball", data["scope"])
	assert.Equal(t, "queued", data["status"])
}

func TestScrapeHandler_Status_NotFound(t *testing.T) {
	engine, cleanup := setupScrapeHandler(t)
	defer cleanup()

	w, resp := doJSON(t, engine, http.MethodGet, "/api/v1/scrape/jobs/99999", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestScrapeHandler_Status_BadID(t *testing.T) {
	engine, cleanup := setupScrapeHandler(t)
	defer cleanup()

	_, resp := doJSON(t, engine, http.MethodGet, "/api/v1/scrape/jobs/abc", nil)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestScrapeHandler_Cancel(t *testing.T) {
	engine, cleanup := setupScrapeHandler(t)
	defer cleanup()

	_, resp := doJSON(t, engine, http.MethodPost, "/api/v1/scrape/ncaa/basketball", nil)
	jobID := int64(resp.Data.(map[string]interface{})["job_id"].(float64))

	w, _ := doJSON(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/scrape/jobs/%d/cancel", jobID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, resp = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/scrape/jobs/%d", jobID), nil)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["cancel_requested"])
}
