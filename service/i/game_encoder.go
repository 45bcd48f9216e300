package i

import (
	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// GameEncoder converts session state and player actions to and from bytes.
type GameEncoder interface {
	NewGameState(sessionID uuid.UUID, version int64, snap game.Snapshot, ended bool) (*structpb.Struct, error)
	MarshalGameState(*structpb.Struct) ([]byte, error)
	UnmarshalGameState([]byte) (*structpb.Struct, error)
	MarshalAction(game.Direction) ([]byte, error)
	UnmarshalAction([]byte) (game.Direction, error)
}
