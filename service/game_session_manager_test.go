package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

type record struct {
	clients []uuid.UUID
	typ     byte
	payload []byte
}

type fakeSocket struct {
	mu      sync.Mutex
	records chan record
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{records: make(chan record, 256)}
}

func (f *fakeSocket) BroadcastToClients(clientIDs []uuid.UUID, typ byte, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case f.records <- record{clients: clientIDs, typ: typ, payload: payload}:
	default:
	}
}

func (f *fakeSocket) GetAddr() string {
	return "ws://snake.test/play"
}

// waitRecord reads broadcasts until one of type typ satisfies match.
func (f *fakeSocket) waitRecord(t *testing.T, typ byte, match func(record) bool) record {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case r := <-f.records:
			if r.typ == typ && match(r) {
				return r
			}
		case <-deadline:
			t.Fatalf("timed out waiting for record type %d", typ)
		}
	}
}

func newTestManager(t *testing.T) (*GameSessionManager, *fakeSocket) {
	t.Helper()
	socket := newFakeSocket()
	m, err := NewGameSessionManager(&Config{
		Socket:      socket,
		GameConfig:  idleConfig(),
		GameEncoder: Protobuf{},
		Logger:      nopLogger{},
	})
	if err != nil {
		t.Fatalf("NewGameSessionManager: %v", err)
	}
	t.Cleanup(m.StopAll)
	return m, socket
}

func TestNewGameSessionManagerValidates(t *testing.T) {
	if _, err := NewGameSessionManager(&Config{GameConfig: idleConfig()}); !errors.Is(err, ErrNilSocket) {
		t.Errorf("missing socket error = %v", err)
	}
	bad := idleConfig()
	bad.Height = 1
	_, err := NewGameSessionManager(&Config{Socket: newFakeSocket(), GameConfig: bad})
	if !errors.Is(err, game.ErrNotBigEnoughDimension) {
		t.Errorf("bad grid error = %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	m, socket := newTestManager(t)
	player := uuid.New()

	sessionID, err := m.NewSession(player)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := m.NewSession(player); !errors.Is(err, ErrPlayerInSession) {
		t.Errorf("second NewSession error = %v, want ErrPlayerInSession", err)
	}

	gotID, addr, err := m.SessionInfo(player)
	if err != nil || gotID != sessionID || addr != "ws://snake.test/play" {
		t.Errorf("SessionInfo = %s, %q, %v", gotID, addr, err)
	}

	r := socket.waitRecord(t, gameStateRecordType, func(record) bool { return true })
	if len(r.clients) != 1 || r.clients[0] != player {
		t.Errorf("broadcast to %v, want [%s]", r.clients, player)
	}

	if err := m.Turn(player, game.Down); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	socket.waitRecord(t, gameStateRecordType, func(r record) bool {
		return field(decodeState(t, r.payload), "heading").GetStringValue() == "down"
	})

	snap, err := m.Snapshot(player)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if field(snap, "sessionId").GetStringValue() != sessionID.String() {
		t.Errorf("snapshot session = %v", field(snap, "sessionId"))
	}

	if err := m.EndSession(player); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	socket.waitRecord(t, gameEndedRecordType, func(r record) bool {
		return field(decodeState(t, r.payload), "ended").GetBoolValue()
	})
	if _, _, err := m.SessionInfo(player); !errors.Is(err, ErrNoSession) {
		t.Errorf("SessionInfo after end error = %v, want ErrNoSession", err)
	}
	if _, err := m.NewSession(player); err != nil {
		t.Errorf("NewSession after end: %v", err)
	}
}

func TestHandlePlayerRequest(t *testing.T) {
	m, socket := newTestManager(t)
	player := uuid.New()
	if _, err := m.NewSession(player); err != nil {
		t.Fatal(err)
	}

	m.HandlePlayerRequest(player, MoveActionType, moveRecord(t, game.Up)[1:])
	socket.waitRecord(t, gameStateRecordType, func(r record) bool {
		return field(decodeState(t, r.payload), "heading").GetStringValue() == "up"
	})

	// Requests from strangers are dropped without effect.
	m.HandlePlayerRequest(uuid.New(), StateRequestActionType, nil)
}

func TestAuthenticate(t *testing.T) {
	m, _ := newTestManager(t)
	player := uuid.New()
	if _, err := m.NewSession(player); err != nil {
		t.Fatal(err)
	}

	id, err := m.Authenticate([]byte(player.String()))
	if err != nil || id != player {
		t.Errorf("Authenticate = %s, %v", id, err)
	}
	if _, err := m.Authenticate([]byte("not-a-uuid")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("bad token error = %v", err)
	}
	if _, err := m.Authenticate([]byte(uuid.NewString())); !errors.Is(err, ErrNoSession) {
		t.Errorf("unknown player error = %v", err)
	}
}

func TestUnknownPlayer(t *testing.T) {
	m, _ := newTestManager(t)
	stranger := uuid.New()

	if err := m.Turn(stranger, game.Up); !errors.Is(err, ErrNoSession) {
		t.Errorf("Turn error = %v", err)
	}
	if _, err := m.Snapshot(stranger); !errors.Is(err, ErrNoSession) {
		t.Errorf("Snapshot error = %v", err)
	}
	if err := m.EndSession(stranger); !errors.Is(err, ErrNoSession) {
		t.Errorf("EndSession error = %v", err)
	}
}

func TestStopAllEndsSessions(t *testing.T) {
	m, socket := newTestManager(t)
	players := []uuid.UUID{uuid.New(), uuid.New()}
	for _, p := range players {
		if _, err := m.NewSession(p); err != nil {
			t.Fatal(err)
		}
	}

	m.StopAll()
	ended := make(map[uuid.UUID]bool)
	for len(ended) < len(players) {
		r := socket.waitRecord(t, gameEndedRecordType, func(record) bool { return true })
		ended[r.clients[0]] = true
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, _, err := m.SessionInfo(players[0]); errors.Is(err, ErrNoSession) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sessions not cleaned after StopAll")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// closedGame is a finished session whose records are all still buffered.
type closedGame struct {
	states chan []byte
	end    chan []byte
}

func newClosedGame(states ...string) *closedGame {
	g := &closedGame{states: make(chan []byte, len(states)), end: make(chan []byte, 1)}
	for _, s := range states {
		g.states <- []byte(s)
	}
	close(g.states)
	g.end <- []byte("final")
	close(g.end)
	return g
}

func (g *closedGame) Start(time.Duration)                 {}
func (g *closedGame) Stop()                               {}
func (g *closedGame) Act([]byte) error                    { return ErrGameStopped }
func (g *closedGame) Snapshot() (*structpb.Struct, error) { return nil, ErrGameStopped }
func (g *closedGame) StateChan() <-chan []byte            { return g.states }
func (g *closedGame) EndChan() <-chan []byte              { return g.end }

func TestListenGameChanRelaysStatesBeforeEnd(t *testing.T) {
	m, socket := newTestManager(t)
	player := uuid.New()
	id := uuid.New()
	gs := newClosedGame("s1", "s2", "s3")

	m.Lock()
	m.saveSession(id, []uuid.UUID{player}, gs)
	m.Unlock()
	m.listenGameChan(id, gs, []uuid.UUID{player})

	want := []record{
		{typ: gameStateRecordType, payload: []byte("s1")},
		{typ: gameStateRecordType, payload: []byte("s2")},
		{typ: gameStateRecordType, payload: []byte("s3")},
		{typ: gameEndedRecordType, payload: []byte("final")},
	}
	for i, w := range want {
		select {
		case r := <-socket.records:
			if r.typ != w.typ || string(r.payload) != string(w.payload) {
				t.Errorf("record %d = type %d %q, want type %d %q", i, r.typ, r.payload, w.typ, w.payload)
			}
		default:
			t.Fatalf("record %d missing", i)
		}
	}
	if _, _, err := m.SessionInfo(player); !errors.Is(err, ErrNoSession) {
		t.Errorf("session still registered after end: %v", err)
	}
}
