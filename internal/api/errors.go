package api

import (
	"errors"
	"net/http"

	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
)

// domainErrorFor maps a service error onto its wire code and HTTP status.
func domainErrorFor(err error) (chessdto.DomainError, int) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return chessdto.DomainError{Code: chessdto.CodeSessionNotFound}, http.StatusNotFound
	case errors.Is(err, session.ErrIllegalMove):
		return chessdto.DomainError{Code: chessdto.CodeIllegalMove}, http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotYourTurn):
		return chessdto.DomainError{Code: chessdto.CodeNotYourTurn}, http.StatusConflict
	case errors.Is(err, session.ErrSelectorBusy):
		return chessdto.DomainError{Code: chessdto.CodeSelectorBusy, Retryable: true}, http.StatusConflict
	case errors.Is(err, session.ErrGameOver):
		return chessdto.DomainError{Code: chessdto.CodeGameOver}, http.StatusConflict
	case errors.Is(err, session.ErrNothingToUndo):
		return chessdto.DomainError{Code: chessdto.CodeNothingToUndo}, http.StatusConflict
	default:
		return chessdto.DomainError{Code: chessdto.CodeInternal, Message: "internal error"}, http.StatusInternalServerError
	}
}

// writeError renders err with a catalog message. data fills the template fields.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, data map[string]string) {
	de, status := domainErrorFor(err)
	if de.Message == "" {
		de.Message = s.adapter.Catalog().Text("chess.error."+de.Code, data, err.Error())
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http_request_failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, chessdto.ErrorResponse{Error: de})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, reason string) {
	de := chessdto.DomainError{
		Code:    chessdto.CodeBadRequest,
		Message: s.adapter.Catalog().Text("chess.error.bad_request", map[string]string{"Reason": reason}, reason),
	}
	writeJSON(w, http.StatusBadRequest, chessdto.ErrorResponse{Error: de})
}
