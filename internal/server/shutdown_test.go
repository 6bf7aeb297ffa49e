package server

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestShutdownManager_ClosersRunInReverseOrder(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{})
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		sm.RegisterCloser(CloserFunc(func() error {
			order = append(order, i)
			return nil
		}))
	}

	if err := sm.Shutdown(context.Background(), "test"); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(order) != 3 || order[0] != 2 || order[1] != 1 || order[2] != 0 {
		t.Errorf("unexpected close order %v", order)
	}

	// Second shutdown is a no-op.
	if err := sm.Shutdown(context.Background(), "again"); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
	if len(order) != 3 {
		t.Errorf("closers ran twice: %v", order)
	}
}

func TestShutdownManager_TrackRequest(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{DrainTimeout: 50 * time.Millisecond})
	if !sm.TrackRequest() {
		t.Fatal("expected request to be tracked")
	}
	if sm.InFlightCount() != 1 {
		t.Errorf("expected 1 in-flight, got %d", sm.InFlightCount())
	}

	// Drain times out with the call still running.
	if err := sm.Shutdown(context.Background(), "test"); err == nil {
		t.Error("expected drain timeout")
	}
	if !sm.IsShuttingDown() {
		t.Error("expected shutting down")
	}
	if sm.TrackRequest() {
		t.Error("expected new requests to be rejected")
	}
	sm.UntrackRequest()
	if sm.InFlightCount() != 0 {
		t.Errorf("expected 0 in-flight, got %d", sm.InFlightCount())
	}
}

func TestShutdownManager_UnaryInterceptor(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{})
	intercept := sm.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test/Method"}

	var seen int64
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = sm.InFlightCount()
		return "ok", nil
	}

	resp, err := intercept(context.Background(), nil, info, handler)
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result %v, %v", resp, err)
	}
	if seen != 1 || sm.InFlightCount() != 0 {
		t.Errorf("in-flight during call %d, after %d", seen, sm.InFlightCount())
	}

	if err := sm.Shutdown(context.Background(), "test"); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_, err = intercept(context.Background(), nil, info, handler)
	if status.Code(err) != codes.Unavailable {
		t.Errorf("expected Unavailable, got %v", err)
	}
}

func TestGracefulGRPCServer_StopsOnShutdown(t *testing.T) {
	sm := NewShutdownManager(ShutdownConfig{})
	lis := bufconn.Listen(1 << 16)
	gs := NewGracefulGRPCServer(grpc.NewServer(), sm)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()

	time.Sleep(50 * time.Millisecond)
	if err := sm.Shutdown(context.Background(), "test"); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}

	if _, err := lis.Dial(); err == nil {
		t.Error("expected listener to be closed")
	}
}
