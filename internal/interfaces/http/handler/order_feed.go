package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	orderapp "github.com/shopadmin/backend/internal/application/order"
	"github.com/shopadmin/backend/internal/infrastructure/telemetry"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Live feed timings
const (
	feedWriteTimeout = 10 * time.Second
	feedPongTimeout  = 60 * time.Second
	feedPingInterval = feedPongTimeout * 9 / 10
)

// FeedMessageOrders is the type of a full order list message
const FeedMessageOrders = "orders"

// OrderSource is the merged order list the live feed follows
type OrderSource interface {
	// Listen calls fn with the current list and after every change until
	// cancel is called
	Listen(fn func([]orderapp.OrderView)) (cancel func())
}

// FeedMessage is pushed to live feed clients
type FeedMessage struct {
	Type   string               `json:"type"`
	Total  int                  `json:"total"`
	Orders []orderapp.OrderView `json:"orders"`
}

// LiveFeed pushes the merged order list to WebSocket clients whenever it
// changes. A slow client only ever receives the latest list.
type LiveFeed struct {
	source   OrderSource
	upgrader websocket.Upgrader
	metrics  *telemetry.OrderMetrics
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closed  bool
}

// NewLiveFeed creates a live feed. allowedOrigins follows the CORS setting:
// "*" accepts any origin. metrics may be nil.
func NewLiveFeed(source OrderSource, allowedOrigins []string, metrics *telemetry.OrderMetrics, logger *zap.Logger) *LiveFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &LiveFeed{
		source:  source,
		metrics: metrics,
		logger:  logger,
		clients: make(map[*feedClient]struct{}),
	}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return f
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Serve godoc
// @Summary      Live order feed
// @Description  WebSocket stream of the merged order list. Browsers pass the session token in the token query parameter.
// @Tags         orders
// @Param        token query string false "Session token"
// @Success      101
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/live [get]
func (f *LiveFeed) Serve(c *gin.Context) {
	if f.isClosed() {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrCodeUnavailable, "Live feed is shutting down"))
		return
	}

	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the error response.
		f.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := newFeedClient(conn)
	if !f.register(client) {
		_ = conn.Close()
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	f.metrics.FeedClientConnected(ctx, 1)
	f.logger.Info("Live feed client connected", zap.String("remote", c.ClientIP()))

	cancel := f.source.Listen(client.push)
	go client.readLoop()
	client.writeLoop()

	cancel()
	f.unregister(client)
	f.metrics.FeedClientConnected(ctx, -1)
	f.logger.Info("Live feed client disconnected", zap.String("remote", c.ClientIP()))
}

// Run waits for ctx to end and then disconnects every client
func (f *LiveFeed) Run(ctx context.Context) error {
	<-ctx.Done()
	f.Close()
	return nil
}

// Close disconnects every client and rejects new ones
func (f *LiveFeed) Close() {
	f.mu.Lock()
	f.closed = true
	clients := make([]*feedClient, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
	}
}

// Clients returns the number of connected clients
func (f *LiveFeed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *LiveFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *LiveFeed) register(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

func (f *LiveFeed) unregister(c *feedClient) {
	f.mu.Lock()
	delete(f.clients, c)
	f.mu.Unlock()
}

// feedClient is one WebSocket connection. push never blocks: it replaces
// the pending list and wakes the writer.
type feedClient struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending []orderapp.OrderView
	dirty   bool

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	closing  chan struct{}
}

func newFeedClient(conn *websocket.Conn) *feedClient {
	return &feedClient{
		conn:    conn,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

func (c *feedClient) push(views []orderapp.OrderView) {
	ordered := make([]orderapp.OrderView, len(views))
	copy(ordered, views)
	orderapp.SortNewestFirst(ordered)

	c.mu.Lock()
	c.pending = ordered
	c.dirty = true
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *feedClient) take() ([]orderapp.OrderView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil, false
	}
	c.dirty = false
	return c.pending, true
}

// readLoop discards client messages and keeps the pong deadline fresh. It
// ends when the connection fails or the client goes away.
func (c *feedClient) readLoop() {
	defer close(c.done)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(feedPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedPongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *feedClient) writeLoop() {
	ticker := time.NewTicker(feedPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.wake:
			views, ok := c.take()
			if !ok {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			msg := FeedMessage{Type: FeedMessageOrders, Total: len(views), Orders: views}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closing:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-c.done:
			return
		}
	}
}

func (c *feedClient) shutdown() {
	c.stopOnce.Do(func() { close(c.closing) })
}
