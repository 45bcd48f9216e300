package i

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// GameServer defines the interface for a running snake session.
type GameServer interface {
	// Start runs the session loop until Stop is called or the duration elapses.
	Start(gameDuration time.Duration)

	// Stop ends the session and waits for the loop to release its timers.
	Stop()

	// Act delivers an action record to the session loop.
	Act(action []byte) error

	// Snapshot returns the current state record.
	Snapshot() (*structpb.Struct, error)

	// StateChan returns the state change channel.
	StateChan() <-chan []byte

	// EndChan returns the end channel for the session.
	EndChan() <-chan []byte
}
