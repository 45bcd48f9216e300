package service

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"google.golang.org/protobuf/types/known/structpb"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// idleConfig keeps every timer far away so tests drive the game by actions.
func idleConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.TickInterval = time.Hour
	cfg.FoodInterval = time.Hour
	cfg.RefreshInterval = time.Hour
	cfg.FoodLifetime = time.Hour
	return cfg
}

func decodeState(t *testing.T, payload []byte) *structpb.Struct {
	t.Helper()
	s, err := Protobuf{}.UnmarshalGameState(payload)
	if err != nil {
		t.Fatalf("UnmarshalGameState: %v", err)
	}
	return s
}

// waitState reads records from ch until match accepts one.
func waitState(t *testing.T, ch <-chan []byte, match func(*structpb.Struct) bool) *structpb.Struct {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				t.Fatal("state channel closed")
			}
			if s := decodeState(t, payload); match(s) {
				return s
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func field(s *structpb.Struct, name string) *structpb.Value {
	return s.GetFields()[name]
}

func headOf(s *structpb.Struct) game.Cell {
	head := field(s, "path").GetListValue().GetValues()[0].GetStructValue()
	return game.Cell{
		X: int(head.GetFields()["x"].GetNumberValue()),
		Y: int(head.GetFields()["y"].GetNumberValue()),
	}
}

func moveRecord(t *testing.T, d game.Direction) []byte {
	t.Helper()
	payload, err := Protobuf{}.MarshalAction(d)
	if err != nil {
		t.Fatalf("MarshalAction: %v", err)
	}
	return append([]byte{MoveActionType}, payload...)
}
