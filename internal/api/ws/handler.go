package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/domain/input"
	"github.com/halcyon-desktop/halcyon/internal/domain/lifecycle"
	"github.com/halcyon-desktop/halcyon/internal/domain/registry"
	"github.com/halcyon-desktop/halcyon/internal/domain/window"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/monitoring"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // frontend shell runs on its own dev origin
	},
}

// client is one connected event stream consumer. Writes are
// serialized per connection; gorilla permits one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(data)
}

// Handler streams desktop events to connected clients and accepts
// input events over the same socket.
type Handler struct {
	router  *input.Router
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHandler creates the stream handler and subscribes it to every
// event-emitting manager.
func NewHandler(
	windows *window.Manager,
	apps *registry.Manager,
	engine *lifecycle.Manager,
	router *input.Router,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	h := &Handler{
		router:  router,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}

	windows.Subscribe(func(ev types.WindowEvent) {
		h.broadcast(gin.H{"type": "window." + ev.Type, "window": ev.Window, "timestamp": ev.Timestamp})
	})
	apps.Subscribe(func(ev types.RegistryEvent) {
		h.broadcast(gin.H{"type": "registry." + ev.Type, "app": ev.Descriptor, "timestamp": ev.Timestamp})
	})
	engine.Subscribe(func(ev types.LifecycleEvent) {
		msg := gin.H{"type": "lifecycle." + ev.Type, "instance": ev.Instance, "timestamp": ev.Timestamp}
		if ev.Reason != "" {
			msg["reason"] = ev.Reason
		}
		if ev.Error != "" {
			msg["error"] = ev.Error
		}
		h.broadcast(msg)
	})
	router.Subscribe(func(ev types.RouterEvent) {
		// Raw input.received notifications are too chatty for the
		// stream; clients poll those. Gestures are worth pushing.
		if ev.Type == types.RouterEventGesture {
			h.broadcast(gin.H{"type": ev.Type, "gesture": ev.Gesture})
		}
	})
	return h
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and serves the event stream
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}

	defer func() {
		h.mu.Lock()
		delete(h.clients, cl)
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.WSConnections.Dec()
		}
		conn.Close()
	}()

	cl.send(gin.H{"type": "system", "message": "connected to halcyon event stream"})

	for {
		var msg incomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "ping":
			cl.send(gin.H{"type": "pong", "timestamp": time.Now().Unix()})
		case "input":
			if msg.Event == nil || msg.Event.Type == "" {
				cl.send(gin.H{"type": "error", "message": "missing input event"})
				continue
			}
			consumed := h.router.Dispatch(*msg.Event)
			cl.send(gin.H{"type": "input.result", "consumed": consumed})
		default:
			cl.send(gin.H{"type": "error", "message": "unknown message type"})
		}
	}
}

type incomingMessage struct {
	Type  string            `json:"type"`
	Event *types.InputEvent `json:"event,omitempty"`
}

// broadcast pushes one message to every connected client. Slow or
// broken clients only lose their own messages.
func (h *Handler) broadcast(data interface{}) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		targets = append(targets, cl)
	}
	h.mu.RUnlock()

	for _, cl := range targets {
		if err := cl.send(data); err != nil {
			h.logger.Debug("dropping websocket write", zap.Error(err))
		}
	}
}
