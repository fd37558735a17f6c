package server

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ArcadeServiceName is the fully-qualified gRPC service name.
const ArcadeServiceName = "arcade.v1.Arcade"

// ArcadeServer is the gRPC surface. Messages are google.protobuf.Struct so
// no generated code is needed:
//
//	DeriveParams {game, elapsed_ms} -> params
//	Spin         {player}           -> spin result
type ArcadeServer interface {
	DeriveParams(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Spin(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(call func(ArcadeServer, context.Context, *structpb.Struct) (*structpb.Struct, error), method string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ArcadeServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ArcadeServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(ArcadeServer), ctx, req.(*structpb.Struct))
		})
	}
}

var arcadeServiceDesc = grpc.ServiceDesc{
	ServiceName: ArcadeServiceName,
	HandlerType: (*ArcadeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "DeriveParams", Handler: unaryHandler(ArcadeServer.DeriveParams, "DeriveParams")},
		{MethodName: "Spin", Handler: unaryHandler(ArcadeServer.Spin, "Spin")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arcade/v1/arcade.proto",
}

type grpcArcade struct {
	a *Arcade
}

func (g grpcArcade) DeriveParams(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := in.GetFields()
	game := f["game"].GetStringValue()
	elapsed := time.Duration(f["elapsed_ms"].GetNumberValue()) * time.Millisecond
	p, err := g.a.Derive(game, elapsed)
	if err != nil {
		return nil, grpcError(err)
	}
	return structpb.NewStruct(paramsMap(p))
}

func (g grpcArcade) Spin(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	res, err := g.a.Spin(ctx, in.GetFields()["player"].GetStringValue())
	if err != nil {
		return nil, grpcError(err)
	}
	return structpb.NewStruct(spinMap(res))
}

// grpcError reuses the HTTP classification so both transports agree.
func grpcError(err error) error {
	code := codes.Internal
	switch _, typ := httpStatus(err); typ {
	case "invalid_argument":
		code = codes.InvalidArgument
	case "not_found":
		code = codes.NotFound
	case "insufficient_points", "daily_limit":
		code = codes.ResourceExhausted
	case "conflict":
		code = codes.FailedPrecondition
	}
	if code == codes.Internal && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("grpc call failed")
	}
	return status.Error(code, err.Error())
}

// NewGRPC registers the Arcade and health services on a new grpc.Server.
func NewGRPC(a *Arcade, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	s.RegisterService(&arcadeServiceDesc, grpcArcade{a: a})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ArcadeServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}
