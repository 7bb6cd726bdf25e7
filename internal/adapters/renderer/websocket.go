package renderer

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/pkg/logger"
	"github.com/okian/tactile/pkg/metrics"
)

const (
	writeTimeout = 2 * time.Second

	// sendBuffer is how many requests a client may lag behind before it is
	// dropped.
	sendBuffer = 16
)

// wsClient is one connection and its outbound queue. Only its writer
// goroutine writes data frames to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketRenderer broadcasts play requests to every connected client.
// Mount it as an http.Handler; clients connect once the renderer is
// prepared. Play only queues the request per client and never waits on
// the network.
type WebSocketRenderer struct {
	upgrader      websocket.Upgrader
	requireClient bool
	logger        logger.Logger

	mu      sync.Mutex
	ready   bool
	clients map[*wsClient]struct{}
}

// WSOption applies a configuration option to the WebSocketRenderer.
type WSOption func(*WebSocketRenderer)

// RequireClient makes Play fail with ErrNoClients when nobody is
// connected.
func RequireClient(required bool) WSOption {
	return func(r *WebSocketRenderer) { r.requireClient = required }
}

// WithCheckOrigin overrides the origin check. The default allows all
// origins.
func WithCheckOrigin(fn func(*http.Request) bool) WSOption {
	return func(r *WebSocketRenderer) {
		if fn != nil {
			r.upgrader.CheckOrigin = fn
		}
	}
}

// WithWSLogger sets a custom logger.
func WithWSLogger(l logger.Logger) WSOption {
	return func(r *WebSocketRenderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// AllowOrigins returns an origin check accepting requests whose Origin
// header matches one of origins, ignoring case. Requests without an Origin
// header come from non-browser clients and are accepted. It returns nil
// when origins is empty.
func AllowOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			allowed[o] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// NewWebSocketRenderer creates a renderer with no clients.
func NewWebSocketRenderer(opts ...WSOption) *WebSocketRenderer {
	r := &WebSocketRenderer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Get()
	}
	r.logger = r.logger.Named("haptics")
	return r
}

// ServeHTTP upgrades the connection and keeps it until the client leaves
// or the renderer shuts down.
func (r *WebSocketRenderer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	ready := r.ready
	r.mu.Unlock()
	if !ready {
		http.Error(w, "haptic engine stopped", http.StatusServiceUnavailable)
		return
	}

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn(req.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	r.mu.Lock()
	if !r.ready {
		r.mu.Unlock()
		_ = conn.Close()
		return
	}
	r.clients[c] = struct{}{}
	n := len(r.clients)
	r.mu.Unlock()

	go r.write(c)

	metrics.UpdateRendererConnections(n)
	r.logger.Info(req.Context(), "haptic client connected",
		logger.String("remote", req.RemoteAddr),
		logger.Int("clients", n),
	)

	// Drain client frames so control messages are handled; any read error
	// means the client is gone.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	r.drop(c)
}

// write sends queued requests until the client's queue is closed, then
// closes the connection.
func (r *WebSocketRenderer) write(c *wsClient) {
	defer func() { _ = c.conn.Close() }()

	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			r.logger.Warn(context.Background(), "dropping haptic client", logger.Error(err))
			r.drop(c)
			for range c.send { //nolint:revive // drain until drop closes the queue
			}
			return
		}
	}
}

// Clients returns the number of connected clients.
func (r *WebSocketRenderer) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *WebSocketRenderer) Prepare(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = true
	r.logger.Info(ctx, "websocket renderer ready")
	return nil
}

// Play queues e for every client. A client whose queue is full is
// dropped.
func (r *WebSocketRenderer) Play(ctx context.Context, e haptic.Effect) error {
	payload, err := encode(e)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotPrepared
	}

	for c := range r.clients {
		select {
		case c.send <- payload:
		default:
			r.logger.Warn(ctx, "dropping slow haptic client")
			r.remove(c)
		}
	}
	metrics.UpdateRendererConnections(len(r.clients))

	if len(r.clients) == 0 && r.requireClient {
		return ErrNoClients
	}
	return nil
}

// Shutdown closes every client and refuses new ones until the next
// Prepare.
func (r *WebSocketRenderer) Shutdown(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ready = false
	for c := range r.clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "engine stopped"),
			time.Now().Add(time.Second))
		r.remove(c)
	}
	metrics.UpdateRendererConnections(0)
	r.logger.Info(ctx, "websocket renderer stopped")
}

func (r *WebSocketRenderer) drop(c *wsClient) {
	r.mu.Lock()
	r.remove(c)
	n := len(r.clients)
	r.mu.Unlock()

	metrics.UpdateRendererConnections(n)
}

// remove forgets c and closes its queue, which ends its writer. It must be
// called with r.mu held; removing an absent client is a no-op.
func (r *WebSocketRenderer) remove(c *wsClient) {
	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	close(c.send)
}
