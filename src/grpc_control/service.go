package grpc_control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"market-cache/src/config"
	"market-cache/src/helpers"
	"market-cache/src/logger"
	"market-cache/src/models"
	"market-cache/src/seeder"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements SeedControlServer
type ControlService struct {
	Config     *config.Config
	ConfigPath string
	Seeder     *seeder.Seeder
	Logger     *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(cfg *config.Config, cfgPath string, sd *seeder.Seeder, log *logger.Logger) *ControlService {
	return &ControlService{
		Config:     cfg,
		ConfigPath: cfgPath,
		Seeder:     sd,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// SeedBatch accepts the same fields as the HTTP seed endpoint.
func (s *ControlService) SeedBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var seedReq models.MSeedRequest
	if err := fromStruct(req, &seedReq); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid seed request: %v", err)
	}

	summary, err := s.Seeder.SeedBatch(ctx, seedReq)
	if err != nil {
		return nil, toStatus(err)
	}

	s.Logger.Info("gRPC: SeedBatch [%d, %d) processed=%d failed=%d", summary.BatchStart, summary.BatchEnd, summary.Processed, summary.Failed)
	return toStruct(summary)
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]interface{}{
		"universe":  s.Seeder.UniverseSize(),
		"last_seed": s.Seeder.LastSummary(),
	})
}

// -----------------------------------------------------------------------------

// UpdateUniverse resolves and swaps the seeder universe, then persists it.
func (s *ControlService) UpdateUniverse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var body struct {
		Universe []string `json:"universe"`
		Symbols  []string `json:"symbols"` // older clients
	}
	if err := fromStruct(req, &body); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	raw := body.Universe
	if len(raw) == 0 {
		raw = body.Symbols
	}
	if len(raw) == 0 {
		return nil, status.Error(codes.InvalidArgument, "universe list cannot be empty")
	}

	universe, err := s.Seeder.SetUniverse(ctx, raw)
	if err != nil {
		return nil, toStatus(err)
	}
	s.Config.Seeder.Universe = raw

	if s.ConfigPath != "" {
		if err := s.Config.Save(s.ConfigPath); err != nil {
			s.Logger.Error("gRPC: Failed to persist universe: %v", err)
			return nil, status.Errorf(codes.Internal, "universe applied but not saved: %v", err)
		}
	}

	s.Logger.Info("gRPC: UpdateUniverse success. Count: %d", len(universe))
	return toStruct(map[string]interface{}{
		"success":       true,
		"message":       fmt.Sprintf("universe now has %d symbols", len(universe)),
		"universe_size": len(universe),
	})
}

// -----------------------------------------------------------------------------

func toStatus(err error) error {
	var vErr *helpers.ValidationError
	var cErr *helpers.ConfigurationError
	switch {
	case errors.As(err, &vErr), errors.As(err, &cErr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// fromStruct decodes a Struct through its JSON form.
func fromStruct(in *structpb.Struct, dst interface{}) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
