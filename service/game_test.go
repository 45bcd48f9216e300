package service

import (
	"errors"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

func startGame(t *testing.T, cfg game.Config, d time.Duration) *Game {
	t.Helper()
	engine, err := game.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	g, err := NewGame(uuid.New(), engine, Protobuf{}, nopLogger{})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	go g.Start(d)
	t.Cleanup(g.Stop)
	return g
}

func TestNewGameRequiresEngine(t *testing.T) {
	if _, err := NewGame(uuid.New(), nil, Protobuf{}, nopLogger{}); !errors.Is(err, ErrNilEngine) {
		t.Errorf("NewGame(nil) error = %v, want ErrNilEngine", err)
	}
}

func TestGamePublishesInitialState(t *testing.T) {
	g := startGame(t, idleConfig(), 0)

	s := waitState(t, g.StateChan(), func(*structpb.Struct) bool { return true })
	if field(s, "version").GetNumberValue() != 0 || headOf(s) != (game.Cell{X: 8, Y: 12}) {
		t.Errorf("initial state version %v head %s", field(s, "version"), headOf(s))
	}
	if field(s, "sessionId").GetStringValue() != g.ID().String() {
		t.Errorf("sessionId = %v, want %s", field(s, "sessionId"), g.ID())
	}
}

func TestGameMoveAction(t *testing.T) {
	g := startGame(t, idleConfig(), 0)

	if err := g.Act(moveRecord(t, game.Up)); err != nil {
		t.Fatalf("Act: %v", err)
	}
	s := waitState(t, g.StateChan(), func(s *structpb.Struct) bool {
		return field(s, "heading").GetStringValue() == "up"
	})
	if field(s, "version").GetNumberValue() != 1 {
		t.Errorf("version after turn = %v, want 1", field(s, "version"))
	}

	// The snake has not moved yet, so left still reverses it and is absorbed.
	if err := g.Act(moveRecord(t, game.Left)); err != nil {
		t.Fatalf("Act: %v", err)
	}
	if err := g.Act([]byte{StateRequestActionType}); err != nil {
		t.Fatalf("Act: %v", err)
	}
	snap, err := g.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if field(snap, "heading").GetStringValue() != "up" {
		t.Errorf("heading after reversal = %v, want up", field(snap, "heading"))
	}
}

func TestGameHandleActionErrors(t *testing.T) {
	engine, err := game.NewEngine(idleConfig())
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGame(uuid.New(), engine, Protobuf{}, nopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	if err := g.handleAction(nil); !errors.Is(err, ErrEmptyAction) {
		t.Errorf("empty action error = %v", err)
	}
	if err := g.handleAction([]byte{99}); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type error = %v", err)
	}
	if err := g.handleAction([]byte{MoveActionType, 0xff, 0xff}); err == nil {
		t.Error("malformed move accepted")
	}
	if err := g.handleAction([]byte{RestartActionType}); err != nil {
		t.Errorf("restart: %v", err)
	}
}

func TestGameTicks(t *testing.T) {
	cfg := idleConfig()
	cfg.TickInterval = 5 * time.Millisecond
	g := startGame(t, cfg, 0)

	waitState(t, g.StateChan(), func(s *structpb.Struct) bool {
		return field(s, "version").GetNumberValue() > 0 && headOf(s) != (game.Cell{X: 8, Y: 12})
	})
}

func TestGameSpawnsAndSweepsFood(t *testing.T) {
	cfg := idleConfig()
	cfg.FoodInterval = 5 * time.Millisecond
	g := startGame(t, cfg, 0)

	waitState(t, g.StateChan(), func(s *structpb.Struct) bool {
		return len(field(s, "food").GetListValue().GetValues()) > 1
	})
}

func TestGameStop(t *testing.T) {
	g := startGame(t, idleConfig(), 0)
	waitState(t, g.StateChan(), func(*structpb.Struct) bool { return true })

	g.Stop()
	g.Stop()

	select {
	case payload, ok := <-g.EndChan():
		if !ok {
			t.Fatal("end channel closed without a final state")
		}
		if !field(decodeState(t, payload), "ended").GetBoolValue() {
			t.Error("final state not marked ended")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no final state")
	}

	if err := g.Act([]byte{StateRequestActionType}); !errors.Is(err, ErrGameStopped) {
		t.Errorf("Act after stop error = %v, want ErrGameStopped", err)
	}
	snap, err := g.Snapshot()
	if err != nil || !field(snap, "ended").GetBoolValue() {
		t.Errorf("Snapshot after stop = %v, %v", snap, err)
	}
	for range g.StateChan() {
	}
}

func TestGameTimeLimit(t *testing.T) {
	g := startGame(t, idleConfig(), 20*time.Millisecond)

	select {
	case _, ok := <-g.EndChan():
		if !ok {
			t.Fatal("end channel closed without a final state")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("time limit did not end the game")
	}
}

func TestGameStopBeforeStart(t *testing.T) {
	engine, err := game.NewEngine(idleConfig())
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGame(uuid.New(), engine, Protobuf{}, nopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	g.Stop()
	done := make(chan struct{})
	go func() {
		g.Start(0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start ran after Stop")
	}
	if _, ok := <-g.StateChan(); ok {
		t.Error("state published after Stop")
	}
}

func TestSnapshotOfGameNeverStarted(t *testing.T) {
	engine, err := game.NewEngine(idleConfig())
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGame(uuid.New(), engine, Protobuf{}, nopLogger{})
	if err != nil {
		t.Fatal(err)
	}
	g.Stop()

	errc := make(chan error, 1)
	go func() {
		_, err := g.Snapshot()
		errc <- err
	}()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrGameStopped) {
			t.Errorf("Snapshot error = %v, want ErrGameStopped", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Snapshot blocked on a game that never ran")
	}
}
