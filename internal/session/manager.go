package session

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nickolaschua/beyondbinary-sub001/internal/config"
	"github.com/nickolaschua/beyondbinary-sub001/internal/database"
	"github.com/nickolaschua/beyondbinary-sub001/internal/protocol"
	"github.com/nickolaschua/beyondbinary-sub001/internal/services"
)

const (
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingPeriod    = 30 * time.Second
	// Slack over the frame byte budget for the JSON envelope around it.
	readLimitSlack = 64 * 1024
)

type client struct {
	id      string
	conn    *websocket.Conn
	send    chan interface{}
	pending chan string // single-slot frame mailbox
	session *Session
	limiter *rateLimiter
	strikes int
	cancel  context.CancelFunc
}

// Manager accepts connections, runs the auth gate, creates and destroys
// sessions, and keeps every session's processing isolated on its own
// goroutine.
type Manager struct {
	cfg     *config.Config
	gateway Gateway
	gate    Gate
	metrics *services.Metrics
	store   *database.Store

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

func NewManager(cfg *config.Config, gw Gateway, gate Gate, metrics *services.Metrics, store *database.Store) *Manager {
	m := &Manager{
		cfg:     cfg,
		gateway: gw,
		gate:    gate,
		metrics: metrics,
		store:   store,
		clients: make(map[string]*client),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     m.checkOrigin,
	}
	return m
}

func (m *Manager) checkOrigin(r *http.Request) bool {
	if m.cfg.CORSOrigins == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range strings.Split(m.cfg.CORSOrigins, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}

// ActiveSessions returns the number of live connections.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// HandleWS upgrades the connection, runs the auth gate and ties the
// connection to a fresh session for its whole lifetime.
func (m *Manager) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	if !m.gate.Allow(r) {
		log.Printf("Connection from %s denied by auth gate", r.RemoteAddr)
		closeWith(conn, m.gate.CloseCode(), "unauthorized")
		return
	}

	if m.gateway == nil {
		// Classifier capability never came up; refuse rather than
		// pretend to predict.
		conn.WriteJSON(protocol.NewError(protocol.CodeModelUnavailable, "Model unavailable"))
		closeWith(conn, websocket.CloseTryAgainLater, "model unavailable")
		return
	}

	if m.ActiveSessions() >= m.cfg.MaxConnections {
		closeWith(conn, websocket.CloseTryAgainLater, "server at capacity")
		return
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		id:      id,
		conn:    conn,
		send:    make(chan interface{}, 256),
		pending: make(chan string, 1),
		session: NewSession(id, m.cfg, m.gateway, m.metrics, m.store),
		limiter: newRateLimiter(m.cfg.RateLimitFrames, m.cfg.RateLimitWindow),
		cancel:  cancel,
	}

	m.mu.Lock()
	m.clients[id] = c
	m.mu.Unlock()
	m.metrics.SessionOpened()
	log.Printf("Client connected: %s (%s)", id, r.RemoteAddr)

	go m.writePump(ctx, c)
	go m.processLoop(ctx, c)
	m.readPump(c)

	// Read loop ended: tear the session down. Any in-flight
	// classification sees the cancelled context and its result is
	// discarded.
	cancel()
	m.mu.Lock()
	delete(m.clients, id)
	m.mu.Unlock()
	m.metrics.SessionClosed()
	conn.Close()
	log.Printf("Client disconnected: %s (%d frames)", id, c.session.FramesProcessed())
}

// readPump parses envelopes, enforces the rate ceiling and feeds frame
// payloads to the processing goroutine. Everything here is fast; the
// slow work lives behind the pending mailbox.
func (m *Manager) readPump(c *client) {
	c.conn.SetReadLimit(int64(m.cfg.MaxFrameBytes + readLimitSlack))
	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", c.id, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))

		env, err := protocol.DecodeEnvelope(raw)
		if err != nil {
			m.metrics.IncrementErrors()
			c.trySend(protocol.NewError(protocol.CodeInvalidJSON, "Invalid JSON"))
			continue
		}

		if env.Type != protocol.TypeFrame {
			m.metrics.IncrementErrors()
			c.trySend(protocol.NewError(protocol.CodeUnknownType, fmt.Sprintf("Unknown message type: %s", env.Type)))
			continue
		}

		if !c.limiter.Allow(time.Now()) {
			c.strikes++
			m.metrics.IncrementErrors()
			c.trySend(protocol.NewError(protocol.CodeRateLimited,
				fmt.Sprintf("Rate limit exceeded: %d frames per %d seconds",
					m.cfg.RateLimitFrames, int(m.cfg.RateLimitWindow.Seconds()))))
			if m.cfg.RateLimitCloses > 0 && c.strikes >= m.cfg.RateLimitCloses {
				log.Printf("Client %s closed after %d rate limit violations", c.id, c.strikes)
				closeWith(c.conn, websocket.ClosePolicyViolation, "rate limit exceeded")
				return
			}
			continue
		}
		c.strikes = 0

		if env.Frame == "" {
			continue
		}
		c.enqueueFrame(m.metrics, env.Frame)
	}
}

// enqueueFrame puts a frame in the single-slot mailbox. If the processor
// has not picked up the previous frame yet, the stale one is dropped in
// favour of the newest camera state. Dropped frames are invisible to the
// client.
func (c *client) enqueueFrame(metrics *services.Metrics, payload string) {
	select {
	case c.pending <- payload:
		return
	default:
	}
	select {
	case <-c.pending:
		metrics.IncrementDropped()
	default:
		// Processor grabbed it between our two selects.
	}
	select {
	case c.pending <- payload:
	default:
	}
}

// trySend queues an outbound message, dropping it if the client cannot
// keep up with its own error chatter.
func (c *client) trySend(msg interface{}) {
	select {
	case c.send <- msg:
	default:
	}
}

// processLoop is the session's single processing lane: one frame at a
// time, in arrival order, no locks needed on the window or filter.
func (m *Manager) processLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-c.pending:
			out := c.session.ProcessFrame(ctx, payload)
			if out == nil {
				continue
			}
			select {
			case c.send <- out:
			case <-ctx.Done():
				return
			}
		}
	}
}

// writePump serializes all outbound traffic for one connection and keeps
// the peer alive with pings.
func (m *Manager) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseAll disconnects every client, used during shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	clients := make([]*client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()

	for _, c := range clients {
		closeWith(c.conn, websocket.CloseGoingAway, "server shutting down")
		c.cancel()
		c.conn.Close()
		log.Printf("Closed connection for client: %s", c.id)
	}
}

// closeWith sends a close frame and closes the connection. WriteControl
// is safe concurrently with the write pump.
func closeWith(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(writeDeadline)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	conn.Close()
}
