package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/stats"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type testEnv struct {
	srv      *Server
	manager  *session.Manager
	recorder *stats.Recorder
	handler  http.Handler
}

func newTestEnv(t *testing.T, delay time.Duration) *testEnv {
	t.Helper()
	engine := chess.NewEngine()
	engine.SetRandomSeed(42)
	recorder, err := stats.NewRecorder(stats.NewMemoryRepository(), nil)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	mgr, err := session.NewManager(session.NewMemoryStore(time.Hour), engine, recorder, session.Config{AIDelay: delay}, nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	srv, err := NewServer(mgr, chesspresenter.NewAdapter(nil), recorder, Options{
		Version:       "test",
		DefaultPlayer: "guest",
		MaxUndoPlies:  2,
	}, nil)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mgr.Close(ctx)
	})
	return &testEnv{srv: srv, manager: mgr, recorder: recorder, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func (e *testEnv) start(t *testing.T) *chessdto.GameState {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/games", chessdto.StartRequest{Player: "kim"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("start: status %d body %s", rr.Code, rr.Body.String())
	}
	st := decode[chessdto.GameState](t, rr)
	return &st
}

func (e *testEnv) await(t *testing.T, id string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := e.manager.Await(ctx, id); err != nil {
		t.Fatalf("await: %v", err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, -1)
	rr := env.do(t, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	h := decode[chessdto.HealthResponse](t, rr)
	if h.Status != "ok" || h.Version != "test" {
		t.Fatalf("unexpected health: %+v", h)
	}
}

func TestStartAndStatus(t *testing.T) {
	env := newTestEnv(t, -1)
	st := env.start(t)
	if st.SessionID == "" || st.Player != "kim" || st.Turn != "light" || st.MoveCount != 0 {
		t.Fatalf("unexpected start state: %+v", st)
	}

	rr := env.do(t, http.MethodGet, "/api/games/"+st.SessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
	got := decode[chessdto.GameState](t, rr)
	if got.FEN != st.FEN {
		t.Fatalf("fen changed: %q vs %q", got.FEN, st.FEN)
	}
}

func TestStartDefaultsPlayer(t *testing.T) {
	env := newTestEnv(t, -1)
	rr := env.do(t, http.MethodPost, "/api/games", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d", rr.Code)
	}
	if st := decode[chessdto.GameState](t, rr); st.Player != "guest" {
		t.Fatalf("expected default player, got %q", st.Player)
	}
}

func TestMoveAndAIReply(t *testing.T) {
	env := newTestEnv(t, -1)
	st := env.start(t)

	rr := env.do(t, http.MethodPost, "/api/games/"+st.SessionID+"/moves", chessdto.MoveRequest{From: "e2", To: "e4"})
	if rr.Code != http.StatusOK {
		t.Fatalf("move: %d %s", rr.Code, rr.Body.String())
	}
	res := decode[chessdto.MoveResponse](t, rr)
	if res.Move != "e2e4" || !res.AIPending || res.State.Turn != "dark" {
		t.Fatalf("unexpected move response: %+v", res)
	}

	env.await(t, st.SessionID)
	after := decode[chessdto.GameState](t, env.do(t, http.MethodGet, "/api/games/"+st.SessionID, nil))
	if after.Turn != "light" || after.MoveCount != 2 || after.Thinking {
		t.Fatalf("AI did not reply: %+v", after)
	}
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t, -1)
	st := env.start(t)
	base := "/api/games/" + st.SessionID

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown session", http.MethodGet, "/api/games/nope", nil, http.StatusNotFound, chessdto.CodeSessionNotFound},
		{"illegal move", http.MethodPost, base + "/moves", chessdto.MoveRequest{From: "e2", To: "e5"}, http.StatusUnprocessableEntity, chessdto.CodeIllegalMove},
		{"bad square", http.MethodPost, base + "/moves", chessdto.MoveRequest{From: "z9", To: "e4"}, http.StatusBadRequest, chessdto.CodeBadRequest},
		{"nothing to undo", http.MethodPost, base + "/undo", chessdto.UndoRequest{}, http.StatusConflict, chessdto.CodeNothingToUndo},
		{"undo over limit", http.MethodPost, base + "/undo", chessdto.UndoRequest{Plies: 5}, http.StatusBadRequest, chessdto.CodeBadRequest},
		{"bad destination query", http.MethodGet, base + "/destinations?from=", nil, http.StatusBadRequest, chessdto.CodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, tc.method, tc.path, tc.body)
			if rr.Code != tc.status {
				t.Fatalf("status: want %d got %d (%s)", tc.status, rr.Code, rr.Body.String())
			}
			body := decode[chessdto.ErrorResponse](t, rr)
			if body.Error.Code != tc.code {
				t.Fatalf("code: want %s got %s", tc.code, body.Error.Code)
			}
			if body.Error.Message == "" {
				t.Fatalf("expected message")
			}
		})
	}

	rr := env.do(t, http.MethodPost, base+"/moves", chessdto.MoveRequest{From: "e2", To: "e5"})
	if msg := decode[chessdto.ErrorResponse](t, rr).Error.Message; msg != "e2e5 is not a legal move." {
		t.Fatalf("catalog message not used: %q", msg)
	}
}

func TestSelectorBusy(t *testing.T) {
	env := newTestEnv(t, 300*time.Millisecond)
	st := env.start(t)
	base := "/api/games/" + st.SessionID

	if rr := env.do(t, http.MethodPost, base+"/moves", chessdto.MoveRequest{From: "e2", To: "e4"}); rr.Code != http.StatusOK {
		t.Fatalf("move: %d", rr.Code)
	}
	rr := env.do(t, http.MethodPost, base+"/moves", chessdto.MoveRequest{From: "d2", To: "d4"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	body := decode[chessdto.ErrorResponse](t, rr)
	if body.Error.Code != chessdto.CodeSelectorBusy || !body.Error.Retryable {
		t.Fatalf("unexpected error: %+v", body.Error)
	}
	thinking := decode[chessdto.GameState](t, env.do(t, http.MethodGet, base, nil))
	if !thinking.Thinking || thinking.Message != "The AI is thinking..." {
		t.Fatalf("expected thinking state: %+v", thinking)
	}
	env.await(t, st.SessionID)
}

func TestDestinationsUndoReset(t *testing.T) {
	env := newTestEnv(t, -1)
	st := env.start(t)
	base := "/api/games/" + st.SessionID

	d := decode[chessdto.DestinationsResponse](t, env.do(t, http.MethodGet, base+"/destinations?from=e2", nil))
	if d.From != "e2" || strings.Join(d.Destinations, ",") != "e3,e4" {
		t.Fatalf("destinations: %+v", d)
	}
	d = decode[chessdto.DestinationsResponse](t, env.do(t, http.MethodGet, base+"/destinations?from=e7", nil))
	if len(d.Destinations) != 0 {
		t.Fatalf("dark piece should not be selectable: %+v", d)
	}

	env.do(t, http.MethodPost, base+"/moves", chessdto.MoveRequest{From: "g1", To: "f3"})
	env.await(t, st.SessionID)

	rr := env.do(t, http.MethodPost, base+"/undo", chessdto.UndoRequest{})
	if rr.Code != http.StatusOK {
		t.Fatalf("undo: %d %s", rr.Code, rr.Body.String())
	}
	undone := decode[chessdto.GameState](t, rr)
	if undone.MoveCount != 0 || undone.Turn != "light" {
		t.Fatalf("undo should rewind to the opening: %+v", undone)
	}

	env.do(t, http.MethodPost, base+"/moves", chessdto.MoveRequest{From: "e2", To: "e4"})
	env.await(t, st.SessionID)
	rr = env.do(t, http.MethodPost, base+"/reset", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("reset: %d", rr.Code)
	}
	if reset := decode[chessdto.GameState](t, rr); reset.MoveCount != 0 || reset.FEN != st.FEN {
		t.Fatalf("reset state: %+v", reset)
	}
}

func TestAbandonAndProfile(t *testing.T) {
	env := newTestEnv(t, -1)
	st := env.start(t)

	if rr := env.do(t, http.MethodDelete, "/api/games/"+st.SessionID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("abandon: %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/games/"+st.SessionID, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after abandon, got %d", rr.Code)
	}

	_, err := env.recorder.Record(context.Background(), stats.Result{Player: "kim", Winner: rules.Light})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	p := decode[chessdto.Profile](t, env.do(t, http.MethodGet, "/api/players/kim/profile", nil))
	if p.GamesPlayed != 1 || p.Wins != 1 {
		t.Fatalf("profile: %+v", p)
	}
	empty := decode[chessdto.Profile](t, env.do(t, http.MethodGet, "/api/players/lee/profile", nil))
	if empty.Player != "lee" || empty.GamesPlayed != 0 {
		t.Fatalf("empty profile: %+v", empty)
	}
}

func TestEventsWebSocket(t *testing.T) {
	env := newTestEnv(t, -1)
	ts := httptest.NewServer(env.handler)
	t.Cleanup(ts.Close)

	st := env.start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/" + st.SessionID + "/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var first chessdto.Event
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read first: %v", err)
	}
	if first.Type != "state" || first.State == nil || first.State.SessionID != st.SessionID {
		t.Fatalf("unexpected first event: %+v", first)
	}

	if rr := env.do(t, http.MethodPost, "/api/games/"+st.SessionID+"/moves", chessdto.MoveRequest{From: "e2", To: "e4"}); rr.Code != http.StatusOK {
		t.Fatalf("move: %d", rr.Code)
	}

	var human, ai chessdto.Event
	if err := wsjson.Read(ctx, conn, &human); err != nil {
		t.Fatalf("read move: %v", err)
	}
	if human.Type != "move" || human.By != "light" || human.Move != "e2e4" {
		t.Fatalf("unexpected move event: %+v", human)
	}
	if err := wsjson.Read(ctx, conn, &ai); err != nil {
		t.Fatalf("read ai move: %v", err)
	}
	if ai.Type != "ai_move" || ai.By != "dark" || ai.State == nil || ai.State.Turn != "light" {
		t.Fatalf("unexpected ai event: %+v", ai)
	}
}

func TestEventsUnknownSession(t *testing.T) {
	env := newTestEnv(t, -1)
	rr := env.do(t, http.MethodGet, "/api/games/missing/events", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestEventsClosedOnAbandon(t *testing.T) {
	env := newTestEnv(t, -1)
	ts := httptest.NewServer(env.handler)
	t.Cleanup(ts.Close)

	st := env.start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/" + st.SessionID + "/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var first chessdto.Event
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read first: %v", err)
	}

	if rr := env.do(t, http.MethodDelete, "/api/games/"+st.SessionID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("abandon: %d", rr.Code)
	}

	var last chessdto.Event
	if err := wsjson.Read(ctx, conn, &last); err != nil {
		t.Fatalf("read abandoned: %v", err)
	}
	if last.Type != "abandoned" || last.SessionID != st.SessionID {
		t.Fatalf("unexpected final event: %+v", last)
	}

	var extra chessdto.Event
	err = wsjson.Read(ctx, conn, &extra)
	if got := websocket.CloseStatus(err); got != websocket.StatusNormalClosure {
		t.Fatalf("close status = %v (err %v), want normal closure", got, err)
	}
}
