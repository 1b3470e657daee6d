package api

import (
	"net/http"
	"strings"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chessdto.HealthResponse{
		Status:  "ok",
		Version: s.opts.Version,
		Message: "chess service is running",
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req chessdto.StartRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	player := strings.TrimSpace(req.Player)
	if player == "" {
		player = s.opts.DefaultPlayer
	}
	st, err := s.manager.Start(r.Context(), session.Meta{Player: player})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, s.adapter.GameState(st))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.manager.Status(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, map[string]string{"ID": id})
		return
	}
	writeJSON(w, http.StatusOK, s.adapter.GameState(st))
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.manager.Abandon(r.Context(), id); err != nil {
		s.writeError(w, r, err, map[string]string{"ID": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	from, err := rules.ParseSquare(r.URL.Query().Get("from"))
	if err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	squares, err := s.manager.Destinations(r.Context(), id, from)
	if err != nil {
		s.writeError(w, r, err, map[string]string{"ID": id})
		return
	}
	writeJSON(w, http.StatusOK, chesspresenter.Destinations(from, squares))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req chessdto.MoveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	from, err := rules.ParseSquare(req.From)
	if err != nil {
		s.writeBadRequest(w, "from: "+err.Error())
		return
	}
	to, err := rules.ParseSquare(req.To)
	if err != nil {
		s.writeBadRequest(w, "to: "+err.Error())
		return
	}
	res, err := s.manager.Play(r.Context(), id, from, to)
	if err != nil {
		s.writeError(w, r, err, map[string]string{
			"ID":   id,
			"Move": rules.Move{From: from, To: to}.String(),
		})
		return
	}
	writeJSON(w, http.StatusOK, s.adapter.MoveResponse(res))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req chessdto.UndoRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	if limit := s.opts.MaxUndoPlies; limit > 0 && req.Plies > limit {
		s.writeBadRequest(w, "plies exceeds undo limit")
		return
	}
	st, _, err := s.manager.Undo(r.Context(), id, req.Plies)
	if err != nil {
		s.writeError(w, r, err, map[string]string{"ID": id})
		return
	}
	writeJSON(w, http.StatusOK, s.adapter.GameState(st))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.manager.Reset(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, map[string]string{"ID": id})
		return
	}
	writeJSON(w, http.StatusOK, s.adapter.GameState(st))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	player := strings.TrimSpace(r.PathValue("player"))
	if player == "" || s.profiles == nil {
		s.writeBadRequest(w, "player is required")
		return
	}
	p, err := s.profiles.Profile(r.Context(), player)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	out := chesspresenter.Profile(p)
	if out == nil {
		out = &chessdto.Profile{Player: player}
	}
	writeJSON(w, http.StatusOK, out)
}
