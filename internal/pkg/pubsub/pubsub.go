package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const ChannelJobProgress = "scrape_job_progress"

// Pipeline stages reported while a unit runs.
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
	StageDone      = "done"
)

// ProgressMessage is one progress event for a scraping job unit.
type ProgressMessage struct {
	Type    string `json:"type"`
	JobID   int64  `json:"job_id"`
	Sport   string `json:"sport,omitempty"`
	Source  string `json:"source,omitempty"`
	Stage   string `json:"stage"`
	Status  string `json:"status"` // running, succeeded, partially_failed, failed
	Records int    `json:"records,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Publisher pushes progress events onto the shared redis channel.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishProgress(ctx context.Context, msg *ProgressMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal progress message: %w", err)
	}

	return p.client.Publish(ctx, ChannelJobProgress, data).Err()
}

// Subscriber forwards progress events to a callback until ctx is cancelled.
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

func (s *Subscriber) Run(ctx context.Context, handle func(*ProgressMessage)) error {
	sub := s.client.Subscribe(ctx, ChannelJobProgress)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			var msg ProgressMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				continue
			}
			handle(&msg)
		}
	}
}
