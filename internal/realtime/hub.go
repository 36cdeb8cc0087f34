// Package realtime pushes job progress over WebSocket to subscribers,
// one Hub per job, coalescing bursts of progress updates so a slow
// client never backs up the analyzer.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tycoonteritory/AutoCut/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Event is a job progress push, mirroring the job status fields a client
// polling GET /jobs/{id} would otherwise have to fetch.
type Event struct {
	Type     string  `json:"type"` // progress, completed, failed, cancelled
	JobID    string  `json:"job_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Phase    string  `json:"phase"`
	Message  string  `json:"message,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out events for a single job to every subscribed client. Only
// the most recent unsent event is kept per client: a client that can't
// keep up sees the latest state instead of a growing backlog.
type Hub struct {
	jobID string

	mu      sync.Mutex
	clients map[*client]struct{}

	last *Event
}

type client struct {
	conn    *websocket.Conn
	latest  chan Event
	closeCh chan struct{}
}

// NewHub creates a Hub for one job's progress stream.
func NewHub(jobID string) *Hub {
	return &Hub{jobID: jobID, clients: make(map[*client]struct{})}
}

// Publish pushes an event to every subscriber, replacing any event still
// queued for a slow client instead of blocking.
func (h *Hub) Publish(ev Event) {
	ev.JobID = h.jobID

	h.mu.Lock()
	h.last = &ev
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case <-c.latest:
		default:
		}
		select {
		case c.latest <- ev:
		case <-c.closeCh:
		}
	}
}

// ServeWS upgrades r to a WebSocket and streams progress events until the
// client disconnects or ctx is cancelled.
func (h *Hub) ServeWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Errorf("realtime: upgrade failed: %v", err)
		return
	}

	c := &client{
		conn:    conn,
		latest:  make(chan Event, 1),
		closeCh: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	last := h.last
	h.mu.Unlock()
	if last != nil {
		select {
		case c.latest <- *last:
		default:
		}
	}

	go h.readPump(c)
	h.writePump(ctx, c)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// readPump only drains control frames (pong, close); AutoCut's progress
// stream is server-to-client only.
func (h *Hub) readPump(c *client) {
	defer close(c.closeCh)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.latest:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			if ev.Type != "progress" {
				return // terminal event: nothing more will ever be published
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeCh:
			return
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
