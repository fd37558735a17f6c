package server

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func dialBuf(t *testing.T, a *Arcade) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewGRPC(a)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCDeriveParams(t *testing.T) {
	a, _ := newTestArcade(t, 0)
	conn := dialBuf(t, a)
	ctx := context.Background()

	req, err := structpb.NewStruct(map[string]any{"game": "reaction", "elapsed_ms": 0})
	if err != nil {
		t.Fatal(err)
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/arcade.v1.Arcade/DeriveParams", req, out); err != nil {
		t.Fatal(err)
	}
	r := out.GetFields()["reaction"].GetStructValue().GetFields()
	if r["show_time_ms"].GetNumberValue() != 1920 || r["word_count"].GetNumberValue() != 1 {
		t.Fatalf("reaction params %v", r)
	}

	bad, _ := structpb.NewStruct(map[string]any{"game": "pinball"})
	err = conn.Invoke(ctx, "/arcade.v1.Arcade/DeriveParams", bad, new(structpb.Struct))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("unknown game: %v", err)
	}
}

func TestGRPCSpin(t *testing.T) {
	a, _ := newTestArcade(t, 500)
	conn := dialBuf(t, a)
	ctx := context.Background()

	req, _ := structpb.NewStruct(map[string]any{"player": "eve"})
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, "/arcade.v1.Arcade/Spin", req, out); err != nil {
		t.Fatal(err)
	}
	f := out.GetFields()
	if f["balance"].GetNumberValue() != 0 || f["prize"].GetStructValue().GetFields()["name"].GetStringValue() == "" {
		t.Fatalf("spin result %v", f)
	}

	err := conn.Invoke(ctx, "/arcade.v1.Arcade/Spin", req, new(structpb.Struct))
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("spin while spinning: %v", err)
	}
}

func TestGRPCHealth(t *testing.T) {
	a, _ := newTestArcade(t, 0)
	conn := dialBuf(t, a)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ArcadeServiceName})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status = %v", resp.GetStatus())
	}
}
