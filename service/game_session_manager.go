package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/beka-birhanu/vinom-snake-server/service/i"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// Record types pushed to players.
const (
	gameStateRecordType = 10
	gameEndedRecordType = 11
)

// Session manager errors.
var (
	ErrNoSession       = errors.New("no session")
	ErrPlayerInSession = errors.New("player already has a game session")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNilSocket       = errors.New("socket is nil")
)

type session struct {
	gameSession i.GameServer
	players     []uuid.UUID
}

// GameSessionManager runs one snake session per player and relays their
// state to the socket.
type GameSessionManager struct {
	socket          i.Broadcaster
	sessions        map[uuid.UUID]session
	playerToSession map[uuid.UUID]uuid.UUID
	gameConfig      game.Config
	engineOptions   []game.Option
	gameEncoder     i.GameEncoder
	sessionDuration time.Duration
	logger          i.Logger
	sync.RWMutex
}

type Config struct {
	Socket          i.Broadcaster
	GameConfig      game.Config
	EngineOptions   []game.Option
	GameEncoder     i.GameEncoder
	SessionDuration time.Duration // Zero for no limit.
	Logger          i.Logger
}

func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.Socket == nil {
		return nil, ErrNilSocket
	}
	if err := c.GameConfig.Validate(); err != nil {
		return nil, fmt.Errorf("game config: %w", err)
	}

	return &GameSessionManager{
		socket:          c.Socket,
		gameConfig:      c.GameConfig,
		engineOptions:   c.EngineOptions,
		gameEncoder:     c.GameEncoder,
		sessionDuration: c.SessionDuration,
		logger:          c.Logger,
		sessions:        make(map[uuid.UUID]session),
		playerToSession: make(map[uuid.UUID]uuid.UUID),
	}, nil
}

// NewSession starts a session for playerID and returns the session ID.
func (g *GameSessionManager) NewSession(playerID uuid.UUID) (uuid.UUID, error) {
	g.Lock()
	if _, ok := g.playerToSession[playerID]; ok {
		g.Unlock()
		return uuid.Nil, ErrPlayerInSession
	}

	engine, err := game.NewEngine(g.gameConfig, g.engineOptions...)
	if err != nil {
		g.Unlock()
		return uuid.Nil, fmt.Errorf("creating engine: %w", err)
	}

	sessionID := g.newSessionID()
	gameServer, err := NewGame(sessionID, engine, g.gameEncoder, g.logger)
	if err != nil {
		g.Unlock()
		return uuid.Nil, fmt.Errorf("creating game server: %w", err)
	}

	players := []uuid.UUID{playerID}
	g.saveSession(sessionID, players, gameServer)
	g.Unlock()

	go gameServer.Start(g.sessionDuration)
	go g.listenGameChan(sessionID, gameServer, players)
	g.logger.Info(fmt.Sprintf("started session %s for player %s", sessionID, playerID))
	return sessionID, nil
}

// SessionInfo returns the player's session ID and where to stream it from.
func (g *GameSessionManager) SessionInfo(playerID uuid.UUID) (uuid.UUID, string, error) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.playerToSession[playerID]
	if !ok {
		return uuid.Nil, "", ErrNoSession
	}
	return sessionID, g.socket.GetAddr(), nil
}

// Authenticate accepts the textual player ID of a player with a session.
func (g *GameSessionManager) Authenticate(token []byte) (uuid.UUID, error) {
	g.RLock()
	defer g.RUnlock()
	id, err := uuid.ParseBytes(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if _, ok := g.playerToSession[id]; !ok {
		return uuid.Nil, ErrNoSession
	}

	g.logger.Info(fmt.Sprintf("authenticated player: %s", id))
	return id, nil
}

// HandlePlayerRequest forwards a record received from a player to their game.
func (g *GameSessionManager) HandlePlayerRequest(pID uuid.UUID, actionType byte, payload []byte) {
	gameServer, err := g.gameOf(pID)
	if err != nil {
		g.logger.Warning("received request for player without session")
		return
	}

	if err := gameServer.Act(append([]byte{actionType}, payload...)); err != nil {
		g.logger.Warning(fmt.Sprintf("dropping request for player %s: %s", pID, err))
	}
}

// Turn asks the player's snake to take heading d on its next move.
func (g *GameSessionManager) Turn(playerID uuid.UUID, d game.Direction) error {
	gameServer, err := g.gameOf(playerID)
	if err != nil {
		return err
	}

	payload, err := g.gameEncoder.MarshalAction(d)
	if err != nil {
		return err
	}
	return gameServer.Act(append([]byte{MoveActionType}, payload...))
}

func (g *GameSessionManager) Snapshot(playerID uuid.UUID) (*structpb.Struct, error) {
	gameServer, err := g.gameOf(playerID)
	if err != nil {
		return nil, err
	}
	return gameServer.Snapshot()
}

// EndSession stops the player's session and forgets it.
func (g *GameSessionManager) EndSession(playerID uuid.UUID) error {
	g.RLock()
	sessionID, ok := g.playerToSession[playerID]
	s := g.sessions[sessionID]
	g.RUnlock()
	if !ok {
		return ErrNoSession
	}

	s.gameSession.Stop()
	g.clean(sessionID)
	g.logger.Info(fmt.Sprintf("ended session %s for player %s", sessionID, playerID))
	return nil
}

func (g *GameSessionManager) gameOf(playerID uuid.UUID) (i.GameServer, error) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.playerToSession[playerID]
	if !ok {
		return nil, ErrNoSession
	}
	return g.sessions[sessionID].gameSession, nil
}

func (g *GameSessionManager) newSessionID() uuid.UUID {
	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			return sessionID
		}
		sessionID = uuid.New()
	}
}

func (g *GameSessionManager) saveSession(sessionID uuid.UUID, players []uuid.UUID, gs i.GameServer) {
	g.sessions[sessionID] = session{gameSession: gs, players: players}
	for _, player := range players {
		g.playerToSession[player] = sessionID
	}
}

// listenGameChan relays every state record to the players, then the end
// record. The state channel is closed before the end record is sent, so
// draining it first keeps the order.
func (g *GameSessionManager) listenGameChan(id uuid.UUID, gs i.GameServer, players []uuid.UUID) {
	for val := range gs.StateChan() {
		g.socket.BroadcastToClients(players, gameStateRecordType, val)
	}
	if val, ok := <-gs.EndChan(); ok {
		g.socket.BroadcastToClients(players, gameEndedRecordType, val)
	}
	g.clean(id)
}

// clean forgets a session. Players who have since moved on to another
// session keep their new mapping.
func (g *GameSessionManager) clean(id uuid.UUID) {
	g.Lock()
	defer g.Unlock()
	s, ok := g.sessions[id]
	if !ok {
		return
	}
	for _, pID := range s.players {
		if g.playerToSession[pID] == id {
			delete(g.playerToSession, pID)
		}
	}

	delete(g.sessions, id)
}

// StopAll stops every running session.
func (g *GameSessionManager) StopAll() {
	g.RLock()
	games := make([]i.GameServer, 0, len(g.sessions))
	for _, s := range g.sessions {
		games = append(games, s.gameSession)
	}
	g.RUnlock()

	for _, gs := range games {
		gs.Stop()
	}
	g.logger.Info(fmt.Sprintf("stopped %d sessions", len(games)))
}
