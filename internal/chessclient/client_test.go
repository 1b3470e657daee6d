package chessclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/api"
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/stats"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := chess.NewEngine()
	engine.SetRandomSeed(3)
	recorder, err := stats.NewRecorder(stats.NewMemoryRepository(), nil)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	mgr, err := session.NewManager(session.NewMemoryStore(time.Hour), engine, recorder, session.Config{AIDelay: -1}, nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	srv, err := api.NewServer(mgr, chesspresenter.NewAdapter(nil), recorder, api.Options{Version: "test", DefaultPlayer: "guest"}, nil)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mgr.Close(ctx)
	})
	return ts
}

func TestClientGameFlow(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.URL+"/", WithTimeout(5*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := c.Health(ctx)
	if err != nil || h.Status != "ok" {
		t.Fatalf("health: %+v %v", h, err)
	}

	st, err := c.Start(ctx, "kim")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	stream := c.Events(st.SessionID)
	got := make(chan chessdto.Event, 8)
	stream.OnEvent(func(ev chessdto.Event) { got <- ev })
	if err := stream.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer stream.Close(context.Background())
	if first := waitEvent(t, got); first.Type != "state" {
		t.Fatalf("expected state frame, got %+v", first)
	}

	d, err := c.Destinations(ctx, st.SessionID, "b1")
	if err != nil {
		t.Fatalf("destinations: %v", err)
	}
	sort.Strings(d.Destinations)
	if strings.Join(d.Destinations, ",") != "a3,c3" {
		t.Fatalf("knight destinations: %+v", d.Destinations)
	}

	res, err := c.Play(ctx, st.SessionID, "e2", "e4")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !res.AIPending {
		t.Fatalf("expected AI reply pending")
	}
	if ev := waitEvent(t, got); ev.Type != "move" {
		t.Fatalf("expected move event, got %+v", ev)
	}
	if ev := waitEvent(t, got); ev.Type != "ai_move" || ev.State.Turn != "light" {
		t.Fatalf("expected ai_move event, got %+v", ev)
	}

	status, err := c.Status(ctx, st.SessionID)
	if err != nil || status.MoveCount != 2 {
		t.Fatalf("status: %+v %v", status, err)
	}

	undone, err := c.Undo(ctx, st.SessionID, 0)
	if err != nil || undone.MoveCount != 0 {
		t.Fatalf("undo: %+v %v", undone, err)
	}
	reset, err := c.Reset(ctx, st.SessionID)
	if err != nil || reset.Turn != "light" {
		t.Fatalf("reset: %+v %v", reset, err)
	}

	p, err := c.Profile(ctx, "kim")
	if err != nil || p.Player != "kim" {
		t.Fatalf("profile: %+v %v", p, err)
	}

	if err := c.Abandon(ctx, st.SessionID); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	_, err = c.Status(ctx, st.SessionID)
	if CodeOf(err) != chessdto.CodeSessionNotFound {
		t.Fatalf("expected session_not_found, got %v", err)
	}
}

func TestClientDomainError(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.URL)
	ctx := context.Background()

	st, err := c.Start(ctx, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err = c.Play(ctx, st.SessionID, "e2", "e5")
	if CodeOf(err) != chessdto.CodeIllegalMove {
		t.Fatalf("expected illegal_move, got %v", err)
	}
	if MessageOf(err) != "e2e5 is not a legal move." {
		t.Fatalf("message: %q", MessageOf(err))
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","version":"v1","message":"up"}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, WithRetry(3))
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if h.Version != "v1" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("unexpected result %+v after %d calls", h, calls)
	}
}

func TestClientDoesNotRetryMoves(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, WithRetry(3))
	_, err := c.Play(context.Background(), "id", "e2", "e4")
	if err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestClientRetriesBusySelector(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"code":"selector_busy","message":"wait","retryable":true}}`))
			return
		}
		_, _ = w.Write([]byte(`{"state":{"session_id":"id","turn":"dark"},"move":"e2e4","ai_pending":true}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, WithRetry(2))
	res, err := c.Play(context.Background(), "id", "e2", "e4")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Move != "e2e4" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("unexpected %+v after %d calls", res, calls)
	}
}

func TestWSURLFor(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":  "ws://localhost:8080",
		"https://chess.example":  "wss://chess.example",
		"ws://already.websocket": "ws://already.websocket",
	}
	for in, want := range cases {
		if got := wsURLFor(in); got != want {
			t.Fatalf("wsURLFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func waitEvent(t *testing.T, ch <-chan chessdto.Event) chessdto.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for event")
		return chessdto.Event{}
	}
}
