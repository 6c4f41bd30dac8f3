// Package server wires the lobby, room registry, rules engine and
// scripted opponent behind the command-in/event-out contract. The
// transport is abstracted as a Gateway; the websocket implementation
// lives alongside in this package.
package server

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tristano-game/tristano-server-go/internal/bot"
	"github.com/tristano-game/tristano-server-go/internal/chat"
	"github.com/tristano-game/tristano-server-go/internal/config"
	"github.com/tristano-game/tristano-server-go/internal/game"
	"github.com/tristano-game/tristano-server-go/internal/lobby"
	"github.com/tristano-game/tristano-server-go/internal/protocol"
	"github.com/tristano-game/tristano-server-go/internal/repository"
	"github.com/tristano-game/tristano-server-go/internal/room"
	"github.com/tristano-game/tristano-server-go/internal/session"
)

// Gateway delivers events to connected clients. Implementations must
// tolerate unknown connection IDs: a client may disconnect between a
// mutation and its broadcast.
type Gateway interface {
	Send(connID string, ev protocol.Event)
	Broadcast(connIDs []string, ev protocol.Event)
}

// GameServer is the authoritative session engine. Commands targeting
// the same room are serialized by the room's session; commands for
// different rooms proceed independently.
type GameServer struct {
	cfg    *config.Config
	logger *zap.Logger

	sessions *session.Manager
	lobby    *lobby.Directory
	rooms    *room.Manager
	chat     *chat.Manager
	agent    *bot.Agent
	matches  *repository.MatchRepository // nil when the database is disabled

	gatewayMu sync.RWMutex
	gateway   Gateway

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates the game server. matches may be nil.
func New(
	cfg *config.Config,
	sessions *session.Manager,
	lobbyDir *lobby.Directory,
	rooms *room.Manager,
	chatMgr *chat.Manager,
	agent *bot.Agent,
	matches *repository.MatchRepository,
	logger *zap.Logger,
) *GameServer {
	return &GameServer{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		lobby:    lobbyDir,
		rooms:    rooms,
		chat:     chatMgr,
		agent:    agent,
		matches:  matches,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetGateway installs the transport used for outbound events.
func (s *GameServer) SetGateway(g Gateway) {
	s.gatewayMu.Lock()
	defer s.gatewayMu.Unlock()
	s.gateway = g
}

func (s *GameServer) send(connID string, ev protocol.Event) {
	s.gatewayMu.RLock()
	g := s.gateway
	s.gatewayMu.RUnlock()
	if g != nil {
		g.Send(connID, ev)
	}
}

func (s *GameServer) broadcast(connIDs []string, ev protocol.Event) {
	s.gatewayMu.RLock()
	g := s.gateway
	s.gatewayMu.RUnlock()
	if g != nil && len(connIDs) > 0 {
		g.Broadcast(connIDs, ev)
	}
}

// Connect registers a new client connection.
func (s *GameServer) Connect(connID, host string) {
	s.sessions.CreateSession(connID, host)
	s.logger.Info("client connected",
		zap.String("conn_id", connID),
		zap.String("host", host),
	)
}

// Disconnect tears down a connection: the player leaves the lobby or,
// if seated, abandons their match exactly as an explicit leaveRoom.
func (s *GameServer) Disconnect(connID string) {
	name := s.sessions.RemoveSession(connID)
	s.lobby.Leave(connID)

	if name != "" {
		if _, seated := s.rooms.RoomOf(name); seated {
			s.leaveSeat(connID, name, false)
		}
	}

	s.logger.Info("client disconnected",
		zap.String("conn_id", connID),
		zap.String("player", name),
	)
	s.broadcastLobby()
}

// HandleRaw decodes one wire frame and dispatches it.
func (s *GameServer) HandleRaw(connID string, raw []byte) {
	cmd, err := protocol.DecodeCommand(raw)
	if err != nil {
		s.sendError(connID, game.Validationf("%v", err))
		return
	}
	s.Handle(connID, cmd)
}

// Handle validates and applies one command. On success the resulting
// state is pushed to every affected client; on failure only the issuer
// receives an error event and no state changes.
func (s *GameServer) Handle(connID string, cmd protocol.Command) {
	if identify, ok := cmd.(*protocol.Identify); ok {
		s.handleIdentify(connID, identify)
		return
	}

	sess, ok := s.sessions.GetSession(connID)
	if !ok {
		s.sendError(connID, game.NotFoundf("unknown connection"))
		return
	}
	sess.UpdateActivity()

	name := sess.PlayerName()
	if name == "" {
		s.sendError(connID, game.Statef("identify before issuing %s", cmd.CommandType()))
		return
	}

	switch c := cmd.(type) {
	case *protocol.CreateRoom:
		s.handleCreateRoom(connID, name)
	case *protocol.JoinRoom:
		s.handleJoinRoom(connID, name, c.RoomID)
	case *protocol.Ready:
		s.handleReady(connID, name, c.RoomID)
	case *protocol.AddBot:
		s.handleAddBot(connID, name, c.RoomID)
	case *protocol.LeaveRoom:
		s.handleLeaveRoom(connID, name)
	case *protocol.ChatMessage:
		s.handleChatMessage(connID, name, c)
	default:
		s.handleGameCommand(connID, name, cmd)
	}
}

func (s *GameServer) handleIdentify(connID string, cmd *protocol.Identify) {
	if cmd.Name == bot.PlayerName {
		s.sendError(connID, game.Validationf("name %s is reserved", bot.PlayerName))
		return
	}

	if err := s.sessions.Identify(connID, cmd.Name); err != nil {
		s.sendError(connID, game.Validationf("%v", err))
		return
	}

	s.lobby.Join(connID, cmd.Name)
	s.logger.Info("player identified",
		zap.String("conn_id", connID),
		zap.String("player", cmd.Name),
	)
	s.broadcastLobby()
}

func (s *GameServer) handleCreateRoom(connID, name string) {
	r, err := s.rooms.CreateRoom(name)
	if err != nil {
		s.sendError(connID, err)
		return
	}

	s.lobby.Leave(connID)
	s.chat.JoinRoom(r.ID, name)

	s.send(connID, protocol.Event{
		Type: protocol.EventRoomCreated,
		Data: protocol.RoomInfo{ID: r.ID, Players: r.Seats()},
	})
	s.broadcastLobby()
}

func (s *GameServer) handleJoinRoom(connID, name, roomID string) {
	r, err := s.rooms.JoinRoom(roomID, name)
	if err != nil {
		s.sendError(connID, err)
		return
	}

	s.lobby.Leave(connID)
	s.chat.JoinRoom(r.ID, name)

	s.broadcastRoom(r, protocol.Event{
		Type: protocol.EventRoomUpdated,
		Data: protocol.RoomUpdate{ID: r.ID, Players: r.Seats(), Ready: r.ReadyNames()},
	})
	s.broadcastLobby()
}

func (s *GameServer) handleReady(connID, name, roomID string) {
	r, ok := s.rooms.GetRoom(roomID)
	if !ok {
		s.sendError(connID, game.NotFoundf("room %s not found", roomID))
		return
	}

	if err := r.MarkReady(name); err != nil {
		s.sendError(connID, err)
		return
	}

	s.broadcastRoom(r, protocol.Event{
		Type: protocol.EventRoomUpdated,
		Data: protocol.RoomUpdate{ID: r.ID, Players: r.Seats(), Ready: r.ReadyNames()},
	})
	s.tryStartGame(r)
}

func (s *GameServer) handleAddBot(connID, name, roomID string) {
	r, ok := s.rooms.GetRoom(roomID)
	if !ok {
		s.sendError(connID, game.NotFoundf("room %s not found", roomID))
		return
	}
	if !r.HasSeat(name) {
		s.sendError(connID, game.Statef("not seated in room %s", roomID))
		return
	}

	if _, err := s.rooms.SeatBot(roomID, s.agent.Name()); err != nil {
		s.sendError(connID, err)
		return
	}

	// The scripted opponent is always ready.
	if err := r.MarkReady(s.agent.Name()); err != nil {
		s.sendError(connID, err)
		return
	}

	s.broadcastRoom(r, protocol.Event{
		Type: protocol.EventRoomUpdated,
		Data: protocol.RoomUpdate{ID: r.ID, Players: r.Seats(), Ready: r.ReadyNames()},
	})
	s.broadcastLobby()
	s.tryStartGame(r)
}

// tryStartGame instantiates the game session once both seats are ready.
func (s *GameServer) tryStartGame(r *room.Room) {
	s.rngMu.Lock()
	sess, created := r.StartSessionIfReady(s.cfg.Game.InitialHandSize, s.rng)
	s.rngMu.Unlock()
	if !created {
		return
	}

	s.logger.Info("game started",
		zap.String("room_id", r.ID),
		zap.Strings("players", r.Seats()),
	)

	s.broadcastRoom(r, protocol.Event{
		Type: protocol.EventGameStarted,
		Data: sess.Snapshot(),
	})
	s.maybeScheduleBot(r, sess)
}

// applyGameCommand routes a phase-scoped command to the session. Both
// human and scripted players go through this path.
func applyGameCommand(sess *game.Session, player string, cmd protocol.Command) error {
	switch c := cmd.(type) {
	case *protocol.Draw:
		return sess.Draw(player)
	case *protocol.PlayToField:
		return sess.PlayToField(player, c.HandIndex, c.ZoneIndex)
	case *protocol.AttackMonster:
		return sess.AttackMonster(player, c.AttackerIndex, c.DefenderIndex)
	case *protocol.AttackShield:
		return sess.AttackShield(player, c.TargetIndex)
	case *protocol.RegenerateShield:
		return sess.RegenerateShield(player)
	case *protocol.EndPhase:
		return sess.EndPhase(player)
	default:
		return game.Validationf("unsupported command %s", cmd.CommandType())
	}
}

// gameRoomID extracts the room ID carried by a game command.
func gameRoomID(cmd protocol.Command) (string, bool) {
	switch c := cmd.(type) {
	case *protocol.Draw:
		return c.RoomID, true
	case *protocol.PlayToField:
		return c.RoomID, true
	case *protocol.AttackMonster:
		return c.RoomID, true
	case *protocol.AttackShield:
		return c.RoomID, true
	case *protocol.RegenerateShield:
		return c.RoomID, true
	case *protocol.EndPhase:
		return c.RoomID, true
	}
	return "", false
}

func (s *GameServer) handleGameCommand(connID, name string, cmd protocol.Command) {
	roomID, ok := gameRoomID(cmd)
	if !ok {
		s.sendError(connID, game.Validationf("unsupported command %s", cmd.CommandType()))
		return
	}

	r, found := s.rooms.GetRoom(roomID)
	if !found {
		s.sendError(connID, game.NotFoundf("room %s not found", roomID))
		return
	}
	if !r.HasSeat(name) {
		s.sendError(connID, game.Statef("not seated in room %s", roomID))
		return
	}

	sess := r.Session()
	if sess == nil {
		s.sendError(connID, game.Statef("game has not started"))
		return
	}

	if err := applyGameCommand(sess, name, cmd); err != nil {
		s.sendError(connID, err)
		return
	}

	s.afterMutation(r, sess)
}

// afterMutation broadcasts the committed state and, when the turn now
// belongs to the scripted opponent, schedules its next action.
func (s *GameServer) afterMutation(r *room.Room, sess *game.Session) {
	snap := sess.Snapshot()

	s.broadcastRoom(r, protocol.Event{
		Type: protocol.EventGameStateUpdate,
		Data: snap,
	})

	if snap.Finished {
		s.logger.Info("game over",
			zap.String("room_id", r.ID),
			zap.String("winner", snap.Winner),
		)
		s.broadcastRoom(r, protocol.Event{
			Type: protocol.EventGameOver,
			Data: protocol.GameOver{RoomID: r.ID, Winner: snap.Winner},
		})
		s.recordMatch(sess, false)
		r.CancelAI()
		return
	}

	s.maybeScheduleBot(r, sess)
}

func (s *GameServer) maybeScheduleBot(r *room.Room, sess *game.Session) {
	if !r.HasSeat(s.agent.Name()) || sess.Turn() != s.agent.Name() {
		return
	}

	roomID := r.ID
	r.ScheduleAI(s.cfg.Server.AIMoveDelay, func() {
		s.runBotStep(roomID)
	})
}

// runBotStep executes one scripted-opponent action. The room may have
// been destroyed while the timer was pending; in that case the step is
// a no-op.
func (s *GameServer) runBotStep(roomID string) {
	r, ok := s.rooms.GetRoom(roomID)
	if !ok {
		return
	}
	sess := r.Session()
	if sess == nil {
		return
	}

	cmd := s.agent.NextCommand(sess.Snapshot(), r.AIActed())
	if cmd == nil {
		return
	}

	if err := applyGameCommand(sess, s.agent.Name(), cmd); err != nil {
		// The policy only emits legal moves; reaching this means the
		// state changed underneath the snapshot. Log and retry later.
		s.logger.Warn("scripted opponent move rejected",
			zap.String("room_id", roomID),
			zap.String("command", string(cmd.CommandType())),
			zap.Error(err),
		)
		s.maybeScheduleBot(r, sess)
		return
	}

	if _, ended := cmd.(*protocol.EndPhase); ended {
		r.SetAIActed(false)
	} else {
		r.SetAIActed(true)
	}

	s.afterMutation(r, sess)
}

func (s *GameServer) handleChatMessage(connID, name string, cmd *protocol.ChatMessage) {
	if cmd.Text == "" {
		s.sendError(connID, game.Validationf("message text is required"))
		return
	}
	if !s.chat.IsMember(cmd.RoomID, name) {
		s.sendError(connID, game.Statef("not seated in room %s", cmd.RoomID))
		return
	}

	r, ok := s.rooms.GetRoom(cmd.RoomID)
	if !ok {
		s.sendError(connID, game.NotFoundf("room %s not found", cmd.RoomID))
		return
	}

	msg := chat.Message{RoomID: cmd.RoomID, From: name, Text: cmd.Text}
	s.chat.Record(msg)

	s.broadcastRoom(r, protocol.Event{
		Type: protocol.EventChatMessage,
		Data: protocol.Chat{RoomID: msg.RoomID, From: msg.From, Text: msg.Text},
	})
}

func (s *GameServer) handleLeaveRoom(connID, name string) {
	s.leaveSeat(connID, name, true)
	s.broadcastLobby()
}

// leaveSeat vacates the player's seat. A vacated seat always abandons
// the running match: the session is detached so the room can host a
// fresh game once its seats ready up again. rejoinLobby is false on
// disconnect, where the connection no longer exists.
func (s *GameServer) leaveSeat(connID, name string, rejoinLobby bool) {
	r, destroyed, err := s.rooms.LeaveRoom(name)
	if err != nil {
		if rejoinLobby {
			s.sendError(connID, err)
		}
		return
	}

	if sess := r.DetachSession(); sess != nil && !sess.Finished() {
		s.logger.Info("match abandoned",
			zap.String("room_id", r.ID),
			zap.String("player", name),
		)
		s.recordMatch(sess, true)
	}

	if destroyed {
		s.chat.RemoveRoom(r.ID)
	} else {
		s.chat.LeaveRoom(r.ID, name)
		s.broadcastRoom(r, protocol.Event{
			Type: protocol.EventRoomUpdated,
			Data: protocol.RoomUpdate{ID: r.ID, Players: r.Seats(), Ready: r.ReadyNames()},
		})
	}

	if rejoinLobby {
		s.lobby.Join(connID, name)
	}
}

// recordMatch persists the outcome when a database is configured.
func (s *GameServer) recordMatch(sess *game.Session, abandoned bool) {
	if s.matches == nil {
		return
	}

	snap := sess.Snapshot()
	rec := repository.MatchRecord{
		RoomID:    snap.RoomID,
		Players:   snap.Players,
		Winner:    snap.Winner,
		Abandoned: abandoned,
		StartedAt: sess.StartTime(),
		EndedAt:   time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.matches.RecordMatch(ctx, rec); err != nil {
			s.logger.Warn("failed to record match",
				zap.String("room_id", rec.RoomID),
				zap.Error(err),
			)
		}
	}()
}

// broadcastRoom pushes an event to every human seated in the room.
func (s *GameServer) broadcastRoom(r *room.Room, ev protocol.Event) {
	seats := r.Seats()
	conns := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat == s.agent.Name() {
			continue
		}
		if connID, ok := s.sessions.ConnOf(seat); ok {
			conns = append(conns, connID)
		}
	}
	s.broadcast(conns, ev)
}

// broadcastLobby pushes the current lobby snapshot to everyone in it.
func (s *GameServer) broadcastLobby() {
	openRooms := s.rooms.OpenRooms()
	infos := make([]protocol.RoomInfo, 0, len(openRooms))
	for _, info := range openRooms {
		infos = append(infos, protocol.RoomInfo{ID: info.ID, Players: info.Players})
	}

	s.broadcast(s.lobby.Conns(), protocol.Event{
		Type: protocol.EventLobbySnapshot,
		Data: protocol.LobbySnapshot{Players: s.lobby.Names(), Rooms: infos},
	})
}

func (s *GameServer) sendError(connID string, err error) {
	message := err.Error()
	var e *game.Error
	if errors.As(err, &e) {
		message = e.Message
	}

	s.send(connID, protocol.Event{
		Type: protocol.EventError,
		Data: protocol.ErrorInfo{
			Kind:    string(game.KindOf(err)),
			Message: message,
		},
	})
}

// Stats summarizes the server's live state for periodic logging.
type Stats struct {
	ActiveConnections int
	LobbyPlayers      int
	OpenRooms         int
	RunningGames      int
}

// GetStats returns current server statistics.
func (s *GameServer) GetStats() Stats {
	return Stats{
		ActiveConnections: s.sessions.ActiveSessions(),
		LobbyPlayers:      s.lobby.Count(),
		OpenRooms:         s.rooms.Count(),
		RunningGames:      s.rooms.ActiveSessionCount(),
	}
}
