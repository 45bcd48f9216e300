package i

import (
	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// GameSessionManager manages game sessions and provides session-related information.
type GameSessionManager interface {
	// NewSession starts a session for the player and returns its ID.
	NewSession(uuid.UUID) (uuid.UUID, error)

	// SessionInfo returns the session ID and the live stream address.
	SessionInfo(uuid.UUID) (uuid.UUID, string, error)

	// Turn requests a heading change for the player's snake.
	Turn(uuid.UUID, game.Direction) error

	// Snapshot returns the player's current state record.
	Snapshot(uuid.UUID) (*structpb.Struct, error)

	// EndSession stops the player's session.
	EndSession(uuid.UUID) error

	StopAll()
}

// Broadcaster pushes records to connected players.
type Broadcaster interface {
	BroadcastToClients(clientIDs []uuid.UUID, typ byte, payload []byte)
	GetAddr() string
}
