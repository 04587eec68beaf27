package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statside/sportschat/config"
)

func testScraperConfig() *config.ScraperConfig {
	return &config.ScraperConfig{
		MaxAttempts: 3,
		RetryBaseMS: 1,
		TimeoutSecs: 5,
		UserAgent:   "statside-test/1.0",
	}
}

func srcFor(server *httptest.Server) config.SourceConfig {
	return config.SourceConfig{Name: "test", BaseURL: server.URL}
}

func TestAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "statside-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("<table>stats</table>"))
	}))
	defer server.Close()

	a := NewAdapter(testScraperConfig(), zap.NewNop())
	doc, err := a.Fetch(context.Background(), srcFor(server), "/stats")
	require.NoError(t, err)
	assert.Equal(t, "test", doc.Source)
	assert.Equal(t, []byte("<table>stats</table>"), doc.Body)
	assert.WithinDuration(t, time.Now(), doc.FetchedAt, time.Minute)
}

func TestAdapter_Fetch_RetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok now"))
	}))
	defer server.Close()

	a := NewAdapter(testScraperConfig(), zap.NewNop())
	doc, err := a.Fetch(context.Background(), srcFor(server), "/stats")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok now"), doc.Body)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAdapter_Fetch_ExhaustedRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a := NewAdapter(testScraperConfig(), zap.NewNop())
	_, err := a.Fetch(context.Background(), srcFor(server), "/stats")
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAdapter_Fetch_BlockedAbortsImmediately(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	a := NewAdapter(testScraperConfig(), zap.NewNop())
	_, err := a.Fetch(context.Background(), srcFor(server), "/stats")
	assert.ErrorIs(t, err, ErrBlocked)
	// A block is permanent for this run; no retries.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAdapter_Fetch_ChallengePageIsBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>Please solve this CAPTCHA to continue</html>"))
	}))
	defer server.Close()

	a := NewAdapter(testScraperConfig(), zap.NewNop())
	_, err := a.Fetch(context.Background(), srcFor(server), "/stats")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestRetryDelay(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, 100*time.Millisecond, retryDelay(base, 1))
	assert.Equal(t, 200*time.Millisecond, retryDelay(base, 2))
	assert.Equal(t, 400*time.Millisecond, retryDelay(base, 3))
}
