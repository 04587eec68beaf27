package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans job-progress events out to websocket subscribers. A client
// subscribes to one job; a job can have several watchers (multiple tabs,
// reconnects).
type Hub struct {
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex
	log     *zap.Logger
}

type Client struct {
	JobID int64
	Conn  *websocket.Conn
	mu    sync.Mutex // serializes writes
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.JobID] == nil {
		h.clients[client.JobID] = make(map[*Client]struct{})
	}
	h.clients[client.JobID][client] = struct{}{}
	h.log.Debug("ws client registered",
		zap.Int64("job_id", client.JobID),
		zap.Int("job_watchers", len(h.clients[client.JobID])),
	)
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.JobID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.JobID)
		}
	}
}

// SendToJob delivers a message to every watcher of a job. Write failures
// are logged and the connection dropped from the hub.
func (h *Hub) SendToJob(jobID int64, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[jobID]))
	for c := range h.clients[jobID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.mu.Lock()
		writeErr := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if writeErr != nil {
			h.log.Warn("ws write failed, dropping client",
				zap.Int64("job_id", jobID),
				zap.Error(writeErr),
			)
			h.Unregister(c)
			c.Conn.Close()
		}
	}
	return nil
}

// WatcherCount reports how many clients watch a job.
func (h *Hub) WatcherCount(jobID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[jobID])
}
