package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/stats"
	"go.uber.org/zap"
)

const maxJSONBodyBytes int64 = 1 << 16

// ProfileSource looks up a player's tally. A nil profile means no games yet.
type ProfileSource interface {
	Profile(ctx context.Context, player string) (*stats.Profile, error)
}

type Options struct {
	Version       string
	DefaultPlayer string
	// MaxUndoPlies caps explicit undo requests; zero disables the cap.
	MaxUndoPlies int
	// OriginPatterns are passed to the websocket handshake.
	OriginPatterns []string
}

// Server exposes session.Manager over JSON and websocket.
type Server struct {
	manager  *session.Manager
	adapter  *chesspresenter.Adapter
	profiles ProfileSource
	logger   *zap.Logger
	opts     Options

	srvMu sync.Mutex
	srv   *http.Server
}

func NewServer(manager *session.Manager, adapter *chesspresenter.Adapter, profiles ProfileSource, opts Options, logger *zap.Logger) (*Server, error) {
	if manager == nil {
		return nil, errors.New("session manager is required")
	}
	if adapter == nil {
		adapter = chesspresenter.NewAdapter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.Version) == "" {
		opts.Version = "dev"
	}
	return &Server{
		manager:  manager,
		adapter:  adapter,
		profiles: profiles,
		logger:   logger,
		opts:     opts,
	}, nil
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Listen blocks serving addr until Close is called.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.logger.Info("http_listen", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts the listener down gracefully.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.withJSON(s.handleHealth))

	mux.HandleFunc("POST /api/games", s.withJSON(s.handleStart))
	mux.HandleFunc("GET /api/games/{id}", s.withJSON(s.handleStatus))
	mux.HandleFunc("DELETE /api/games/{id}", s.withJSON(s.handleAbandon))
	mux.HandleFunc("GET /api/games/{id}/destinations", s.withJSON(s.handleDestinations))
	mux.HandleFunc("POST /api/games/{id}/moves", s.withJSON(s.handleMove))
	mux.HandleFunc("POST /api/games/{id}/undo", s.withJSON(s.handleUndo))
	mux.HandleFunc("POST /api/games/{id}/reset", s.withJSON(s.handleReset))
	mux.HandleFunc("GET /api/games/{id}/events", s.handleEvents)

	mux.HandleFunc("GET /api/players/{player}/profile", s.withJSON(s.handleProfile))
	return mux
}

func (s *Server) withJSON(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// decodeBody reads an optional JSON body. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return err
	}
	return nil
}
