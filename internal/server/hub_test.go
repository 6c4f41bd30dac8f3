package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/tristano-game/tristano-server-go/internal/bot"
	"github.com/tristano-game/tristano-server-go/internal/chat"
	"github.com/tristano-game/tristano-server-go/internal/config"
	"github.com/tristano-game/tristano-server-go/internal/lobby"
	"github.com/tristano-game/tristano-server-go/internal/protocol"
	"github.com/tristano-game/tristano-server-go/internal/room"
	"github.com/tristano-game/tristano-server-go/internal/session"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Server: config.ServerConfig{
			MaxSessions:   100,
			AIMoveDelay:   time.Second,
			StatsInterval: time.Minute,
		},
		Game: config.GameConfig{InitialHandSize: 3},
	}

	srv := New(
		cfg,
		session.NewManager(logger),
		lobby.NewDirectory(logger),
		room.NewManager(logger),
		chat.NewManager(logger),
		bot.New(logger),
		nil,
		logger,
	)
	return NewHub(srv, logger)
}

// A broadcast racing a disconnect must never send on the closed client
// channel. Run with -race to catch regressions.
func TestHubBroadcastDuringUnregister(t *testing.T) {
	h := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	ev := protocol.Event{
		Type: protocol.EventLobbySnapshot,
		Data: protocol.LobbySnapshot{Players: []string{}, Rooms: []protocol.RoomInfo{}},
	}

	for i := range 200 {
		c := &client{
			id:   fmt.Sprintf("conn-%d", i),
			send: make(chan []byte, 1),
		}
		h.register <- c
		h.srv.Connect(c.id, "127.0.0.1:1234")

		done := make(chan struct{})
		go func() {
			for range 25 {
				h.Broadcast([]string{c.id}, ev)
			}
			close(done)
		}()

		h.unregister <- c
		<-done
	}
}

func TestHubDeliverToUnknownConnection(t *testing.T) {
	h := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	// Must be a silent no-op.
	h.Send("missing", protocol.Event{Type: protocol.EventError, Data: protocol.ErrorInfo{}})
}

func TestHubShutdownRemovesClients(t *testing.T) {
	h := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := &client{id: "conn-1", send: make(chan []byte, 1)}
	h.register <- c

	cancel()

	// The send channel is closed on shutdown; a ranging writePump exits.
	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-c.send:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("client channel not closed on shutdown")
		}
	}
}
