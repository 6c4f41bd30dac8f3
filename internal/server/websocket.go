package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tristano-game/tristano-server-go/internal/config"
	"github.com/tristano-game/tristano-server-go/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // clients are served from arbitrary origins
	},
}

const clientSendBuffer = 256

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub owns all websocket clients and implements Gateway. Registration
// and teardown are funneled through channels so the client map has a
// single writer.
type Hub struct {
	srv    *GameServer
	logger *zap.Logger

	mu         sync.RWMutex
	clients    map[string]*client
	register   chan *client
	unregister chan *client
}

// NewHub creates a hub bound to the game server and installs itself as
// the server's gateway.
func NewHub(srv *GameServer, logger *zap.Logger) *Hub {
	h := &Hub{
		srv:        srv,
		logger:     logger,
		clients:    make(map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
	srv.SetGateway(h)
	return h
}

// Run processes client lifecycle events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()
			h.srv.Disconnect(c.id)

		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Send delivers one event to a single connection.
func (h *Hub) Send(connID string, ev protocol.Event) {
	payload, err := protocol.EncodeEvent(ev)
	if err != nil {
		h.logger.Error("failed to encode event",
			zap.String("event", string(ev.Type)),
			zap.Error(err),
		)
		return
	}
	h.deliver(connID, payload)
}

// Broadcast delivers one event to a set of connections.
func (h *Hub) Broadcast(connIDs []string, ev protocol.Event) {
	payload, err := protocol.EncodeEvent(ev)
	if err != nil {
		h.logger.Error("failed to encode event",
			zap.String("event", string(ev.Type)),
			zap.Error(err),
		)
		return
	}
	for _, id := range connIDs {
		h.deliver(id, payload)
	}
}

// deliver holds the read lock across the send so Run cannot close the
// channel underneath it. The send is non-blocking, so the lock is never
// held up by a slow consumer.
func (h *Hub) deliver(connID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}

	select {
	case c.send <- payload:
	default:
		// Slow consumer: drop the frame rather than block the engine.
		h.logger.Warn("dropping frame for slow client",
			zap.String("conn_id", connID),
		)
	}
}

// ServeWS upgrades an HTTP request to a websocket connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	h.register <- c
	h.srv.Connect(c.id, r.RemoteAddr)

	go c.writePump()
	go c.readPump(h)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.srv.HandleRaw(c.id, message)
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// StartWebSocketServer serves the websocket endpoint plus a health
// probe. It blocks until ctx is cancelled, then shuts down gracefully.
func StartWebSocketServer(ctx context.Context, cfg config.WebSocketConfig, hub *Hub, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Path, hub.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("websocket server listening",
			zap.String("address", cfg.Address),
			zap.String("path", cfg.Path),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
