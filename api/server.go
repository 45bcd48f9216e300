package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/beka-birhanu/vinom-snake-server/service"
	"github.com/beka-birhanu/vinom-snake-server/service/i"
	"github.com/google/uuid"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Server struct {
	gameSessionManager i.GameSessionManager

	UnimplementedSessionServer
}

func RegisterNewGameSessionManager(gsr grpc.ServiceRegistrar, gsm i.GameSessionManager) error {
	if gsm == nil {
		return errors.New("game session manager is nil")
	}
	server := &Server{
		gameSessionManager: gsm,
	}

	RegisterSessionServer(gsr, server)
	return nil
}

func (s *Server) NewGame(ctx context.Context, r *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	playerID, err := parsePlayerID(r.GetValue())
	if err != nil {
		return nil, err
	}

	sessionID, err := s.gameSessionManager.NewSession(playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(sessionID.String()), nil
}

func (s *Server) SessionInfo(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r.GetValue())
	if err != nil {
		return nil, err
	}

	sessionID, streamAddr, err := s.gameSessionManager.SessionInfo(playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"sessionId":  sessionID.String(),
		"streamAddr": streamAddr,
	})
}

func (s *Server) Turn(ctx context.Context, r *structpb.Struct) (*emptypb.Empty, error) {
	fields := r.GetFields()
	playerID, err := parsePlayerID(fields["playerId"].GetStringValue())
	if err != nil {
		return nil, err
	}
	d, err := game.ParseDirection(fields["direction"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.gameSessionManager.Turn(playerID, d); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Snapshot(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r.GetValue())
	if err != nil {
		return nil, err
	}

	state, err := s.gameSessionManager.Snapshot(playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return state, nil
}

func (s *Server) EndGame(ctx context.Context, r *wrapperspb.StringValue) (*emptypb.Empty, error) {
	playerID, err := parsePlayerID(r.GetValue())
	if err != nil {
		return nil, err
	}

	if err := s.gameSessionManager.EndSession(playerID); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func parsePlayerID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, fmt.Sprintf("Error parsing playerID: %s", err))
	}
	return id, nil
}

// toStatus maps session errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrNoSession):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrPlayerInSession):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrGameStopped):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
