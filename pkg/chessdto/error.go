package chessdto

const (
	CodeSessionNotFound = "session_not_found"
	CodeIllegalMove     = "illegal_move"
	CodeNotYourTurn     = "not_your_turn"
	CodeSelectorBusy    = "selector_busy"
	CodeGameOver        = "game_over"
	CodeNothingToUndo   = "nothing_to_undo"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

// ErrorResponse wraps a DomainError on the wire.
type ErrorResponse struct {
	Error DomainError `json:"error"`
}
