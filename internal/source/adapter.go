package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/statside/sportschat/config"
)

// Fetch failure taxonomy. Blocked is permanent for the current run and is
// never retried; Unreachable and Timeout are transient and retried with
// exponential backoff up to the configured attempt count.
var (
	ErrUnreachable = errors.New("source unreachable")
	ErrBlocked     = errors.New("source blocked")
	ErrTimeout     = errors.New("source timeout")
)

const maxBodyBytes = 10 * 1024 * 1024

// RawDocument is the result of one successful fetch.
type RawDocument struct {
	Source    string
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// Adapter fetches raw pages from external stats sites. It owns nothing but
// the network call: no caching, no parsing.
type Adapter struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	log         *zap.Logger
}

func NewAdapter(cfg *config.ScraperConfig, log *zap.Logger) *Adapter {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "sportschat/1.0"
	}
	return &Adapter{
		client:      &http.Client{Timeout: cfg.Timeout()},
		userAgent:   userAgent,
		maxAttempts: attempts,
		retryBase:   cfg.RetryBase(),
		log:         log,
	}
}

// Fetch retrieves source.BaseURL+endpoint, retrying transient failures with
// exponential backoff. A permanent block aborts immediately so the
// orchestrator can distinguish retry-exhaustion from an anti-bot wall.
func (a *Adapter) Fetch(ctx context.Context, src config.SourceConfig, endpoint string) (*RawDocument, error) {
	url := strings.TrimRight(src.BaseURL, "/") + endpoint

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := retryDelay(a.retryBase, attempt-1)
			a.log.Info("retrying fetch",
				zap.String("source", src.Name),
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
			case <-timer.C:
			}
		}

		doc, err := a.fetchOnce(ctx, src.Name, url)
		if err == nil {
			return doc, nil
		}
		if errors.Is(err, ErrBlocked) {
			a.log.Warn("fetch blocked, not retrying",
				zap.String("source", src.Name),
				zap.String("url", url),
				zap.Error(err),
			)
			return nil, err
		}
		lastErr = err
	}

	a.log.Warn("fetch attempts exhausted",
		zap.String("source", src.Name),
		zap.String("url", url),
		zap.Int("attempts", a.maxAttempts),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

func (a *Adapter) fetchOnce(ctx context.Context, sourceName, url string) (*RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, url)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d from %s", ErrBlocked, resp.StatusCode, url)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnreachable, resp.StatusCode, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnreachable, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if looksBlocked(body) {
		return nil, fmt.Errorf("%w: challenge page from %s", ErrBlocked, url)
	}

	return &RawDocument{
		Source:    sourceName,
		URL:       url,
		Body:      body,
		FetchedAt: time.Now(),
	}, nil
}

// retryDelay computes base * 2^(n-1) for the nth retry.
func retryDelay(base time.Duration, retry int) time.Duration {
	delay := base
	for i := 1; i < retry; i++ {
		delay *= 2
	}
	return delay
}

// looksBlocked sniffs anti-bot challenge pages that come back with a 200.
func looksBlocked(body []byte) bool {
	head := body
	if len(head) > 4096 {
		head = head[:4096]
	}
	lower := strings.ToLower(string(head))
	for _, marker := range []string{"captcha", "access denied", "are you a robot", "challenge-platform"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
