package proto

import (
	"context"
	"math"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/service"
)

type BookmarkerServerImpl struct {
	gateway service.Gateway
	logger  *zap.SugaredLogger
}

func NewBookmarkerServerImpl(gateway service.Gateway, logger *zap.SugaredLogger) *BookmarkerServerImpl {
	return &BookmarkerServerImpl{
		gateway: gateway,
		logger:  logger,
	}
}

// NewGRPCServer serves the read API on GRPC_PORT for the lifetime of the app.
func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, gateway service.Gateway, logger *zap.SugaredLogger) *BookmarkerServerImpl {
	instance := NewBookmarkerServerImpl(gateway, logger)
	if cfg.GRPCPort == "" {
		logger.Info("GRPC server disabled.")
		return instance
	}

	grpcServer := grpc.NewServer()
	RegisterBookmarkerServer(grpcServer, instance)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.Host+":"+cfg.GRPCPort)
			if err != nil {
				return errors.Wrap(err, "failed to listen")
			}
			go func() {
				logger.Infof("GRPC server listening on %s", lis.Addr())
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("GRPC server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}

func (s *BookmarkerServerImpl) ListBookmarks(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	bookmarks, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Errorw("grpc list bookmarks", "error", err)
		return nil, status.Error(codes.Internal, "failed to list bookmarks")
	}

	items := make([]*structpb.Value, len(bookmarks))
	for i := range bookmarks {
		st, err := toStruct(bookmarks[i].Sanitized())
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		items[i] = structpb.NewStructValue(st)
	}
	return &structpb.ListValue{Values: items}, nil
}

func (s *BookmarkerServerImpl) GetBookmark(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	if req.GetValue() > math.MaxInt64 {
		s.logger.Errorw("bookmark not found", "id", req.GetValue())
		return nil, status.Error(codes.NotFound, "Bookmark not found")
	}

	bookmark, found, err := s.gateway.Get(ctx, req.GetValue())
	if err != nil {
		s.logger.Errorw("grpc get bookmark", "id", req.GetValue(), "error", err)
		return nil, status.Error(codes.Internal, "failed to get bookmark")
	}
	if !found {
		s.logger.Errorw("bookmark not found", "id", req.GetValue())
		return nil, status.Error(codes.NotFound, "Bookmark not found")
	}

	st, err := toStruct(bookmark.Sanitized())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

func toStruct(b models.Bookmark) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		// google.protobuf.Value only carries doubles
		"id":          float64(b.ID),
		"title":       b.Title,
		"url":         b.URL,
		"description": nil,
		"rating":      nil,
	}
	if b.Description != nil {
		fields["description"] = *b.Description
	}
	if b.Rating != nil {
		fields["rating"] = *b.Rating
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Wrap(err, "convert bookmark")
	}
	return st, nil
}
