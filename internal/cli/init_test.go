package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"covidboard/internal/core"
	applog "covidboard/internal/log"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
}

type fakeServer struct {
	listenErr error
	stopped   chan struct{}
	once      sync.Once
	shutdowns int
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stopped: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdowns++
	f.once.Do(func() { close(f.stopped) })
	return nil
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := newFakeServer(nil)

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, quietLogger(), srv, time.Second) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if srv.shutdowns != 1 {
		t.Fatalf("shutdowns=%d", srv.shutdowns)
	}
}

func TestServeListenError(t *testing.T) {
	boom := errors.New("address in use")
	srv := newFakeServer(boom)

	err := Serve(context.Background(), quietLogger(), srv, time.Second)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
	if srv.shutdowns != 1 {
		t.Fatalf("listener failure must still shut down, shutdowns=%d", srv.shutdowns)
	}
}

type fixedSource struct{ table *core.Table }

func (s fixedSource) Load(context.Context) (*core.Table, error) { return s.table, nil }

type slowSource struct{}

func (slowSource) Load(ctx context.Context) (*core.Table, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLoadTable(t *testing.T) {
	want := core.NewTable([]core.Record{{Status: core.Recovered, State: "Goa"}})
	got, err := LoadTable(context.Background(), quietLogger(), fixedSource{table: want}, time.Second)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("rows=%d", got.Len())
	}

	_, err = LoadTable(context.Background(), quietLogger(), slowSource{}, 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v want deadline exceeded", err)
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level not enabled")
	}
	logger = SetupLogger("nonsense")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("unknown level must fall back to info")
	}
}
