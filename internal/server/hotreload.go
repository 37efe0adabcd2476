package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/logging"
	"github.com/conneroisu/pageforge/internal/monitoring"
	"github.com/conneroisu/pageforge/internal/project"
	"github.com/conneroisu/pageforge/internal/renderer"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

type hotClient struct {
	conn *websocket.Conn
	send chan string
}

// HotReload pushes reload notifications to connected browsers whenever a
// new project is installed, and build error overlays when a rebuild fails.
type HotReload struct {
	path    string
	holder  *project.Holder
	logger  logging.Logger
	metrics *monitoring.Metrics

	clients      map[*hotClient]struct{}
	clientsMutex sync.RWMutex
}

// NewHotReload creates a hot reload endpoint mounted under base.
func NewHotReload(base string, holder *project.Holder, logger logging.Logger, metrics *monitoring.Metrics) *HotReload {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HotReload{
		path:    renderer.HotReloadPath(base),
		holder:  holder,
		logger:  logger.WithComponent("hot_reload"),
		metrics: metrics,
		clients: make(map[*hotClient]struct{}),
	}
}

// Path is the WebSocket endpoint path.
func (h *HotReload) Path() string {
	return h.path
}

// Middleware returns the DevMiddleware that accepts WebSocket connections on
// Path.
func (h *HotReload) Middleware() DevMiddleware {
	return func(w http.ResponseWriter, r *http.Request) (bool, error) {
		if r.URL.Path != h.path {
			return false, nil
		}
		h.accept(w, r)
		return true, nil
	}
}

// Run broadcasts a reload for every installed project until ctx is done.
func (h *HotReload) Run(ctx context.Context) {
	updates := h.holder.Subscribe()
	defer h.holder.Unsubscribe(updates)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case p := <-updates:
			h.logger.Debug(ctx, "Project installed, reloading clients", "generation", p.Generation)
			h.Broadcast(renderer.HotReloadMessage)
		}
	}
}

// NotifyError sends a build error overlay to every client. A nil error is
// ignored.
func (h *HotReload) NotifyError(err error) {
	if err == nil {
		return
	}
	collector := pferrors.NewErrorCollector()
	collector.AddError(err)
	h.Broadcast(renderer.HotErrorPrefix + collector.ErrorOverlay())
}

// Clients returns the number of connected clients.
func (h *HotReload) Clients() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Clients whose queue is full are
// dropped.
func (h *HotReload) Broadcast(msg string) {
	h.clientsMutex.RLock()
	var failed []*hotClient
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			failed = append(failed, c)
		}
	}
	h.clientsMutex.RUnlock()

	for _, c := range failed {
		h.remove(c, websocket.StatusPolicyViolation, "client too slow")
	}
}

func (h *HotReload) accept(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &hotClient{conn: conn, send: make(chan string, 16)}
	h.clientsMutex.Lock()
	h.clients[c] = struct{}{}
	h.clientsMutex.Unlock()
	h.metrics.HotClientConnected(1)

	ctx := conn.CloseRead(context.Background())
	h.writePump(ctx, c)
}

func (h *HotReload) writePump(ctx context.Context, c *hotClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(c, websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, []byte(msg))
			cancel()
			if err != nil {
				h.logger.Debug(ctx, "WebSocket write failed", "error", err.Error())
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *HotReload) remove(c *hotClient, code websocket.StatusCode, reason string) {
	h.clientsMutex.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.clientsMutex.Unlock()
	if !ok {
		return
	}
	h.metrics.HotClientConnected(-1)
	_ = c.conn.Close(code, reason)
}

func (h *HotReload) closeAll() {
	h.clientsMutex.RLock()
	clients := make([]*hotClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMutex.RUnlock()

	for _, c := range clients {
		h.remove(c, websocket.StatusGoingAway, "server shutting down")
	}
}
