package service

import (
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Protobuf encodes state records as google.protobuf.Struct messages and
// move payloads as google.protobuf.StringValue direction names.
type Protobuf struct{}

// NewGameState builds the state record for a snapshot.
func (Protobuf) NewGameState(sessionID uuid.UUID, version int64, snap game.Snapshot, ended bool) (*structpb.Struct, error) {
	path := make([]any, 0, len(snap.Path))
	for _, c := range snap.Path {
		path = append(path, map[string]any{"x": c.X, "y": c.Y})
	}

	food := make([]any, 0, len(snap.Foods))
	for _, f := range snap.Foods {
		food = append(food, map[string]any{
			"x":         f.X,
			"y":         f.Y,
			"arrivalMs": f.ArrivalTime.UnixMilli(),
		})
	}

	state, err := structpb.NewStruct(map[string]any{
		"sessionId": sessionID.String(),
		"version":   version,
		"ended":     ended,
		"score":     snap.Score,
		"heading":   snap.Heading.String(),
		"width":     snap.Grid.Width,
		"height":    snap.Grid.Height,
		"path":      path,
		"food":      food,
	})
	if err != nil {
		return nil, fmt.Errorf("building game state: %w", err)
	}
	return state, nil
}

func (Protobuf) MarshalGameState(s *structpb.Struct) ([]byte, error) {
	return proto.Marshal(s)
}

func (Protobuf) UnmarshalGameState(b []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("decoding game state: %w", err)
	}
	return s, nil
}

func (Protobuf) MarshalAction(d game.Direction) ([]byte, error) {
	return proto.Marshal(wrapperspb.String(d.String()))
}

// UnmarshalAction decodes a move payload into a direction.
func (Protobuf) UnmarshalAction(b []byte) (game.Direction, error) {
	v := &wrapperspb.StringValue{}
	if err := proto.Unmarshal(b, v); err != nil {
		return game.Right, fmt.Errorf("decoding action: %w", err)
	}
	return game.ParseDirection(v.GetValue())
}

// DecodeSnapshot rebuilds the engine snapshot carried by a state record.
func (Protobuf) DecodeSnapshot(s *structpb.Struct) (game.Snapshot, error) {
	fields := s.GetFields()
	heading, err := game.ParseDirection(fields["heading"].GetStringValue())
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	snap := game.Snapshot{
		Grid: game.Grid{
			Width:  int(fields["width"].GetNumberValue()),
			Height: int(fields["height"].GetNumberValue()),
		},
		Heading: heading,
		Score:   int(fields["score"].GetNumberValue()),
	}
	if err := snap.Grid.ValidateSize(); err != nil {
		return game.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	for _, v := range fields["path"].GetListValue().GetValues() {
		snap.Path = append(snap.Path, cellOf(v.GetStructValue()))
	}
	for _, v := range fields["food"].GetListValue().GetValues() {
		f := v.GetStructValue()
		snap.Foods = append(snap.Foods, game.Food{
			Cell:        cellOf(f),
			ArrivalTime: time.UnixMilli(int64(f.GetFields()["arrivalMs"].GetNumberValue())),
		})
	}

	for _, c := range snap.Path {
		if err := snap.Grid.Validate(c); err != nil {
			return game.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
		}
	}
	for _, f := range snap.Foods {
		if err := snap.Grid.Validate(f.Cell); err != nil {
			return game.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
		}
	}
	return snap, nil
}

func cellOf(s *structpb.Struct) game.Cell {
	return game.Cell{
		X: int(s.GetFields()["x"].GetNumberValue()),
		Y: int(s.GetFields()["y"].GetNumberValue()),
	}
}
