package session

import "context"

// Turn is a scheduled AI reply. It completes exactly once.
type Turn struct {
	SessionID string

	done  chan struct{}
	state *State
	err   error
}

func newTurn(id string) *Turn {
	return &Turn{SessionID: id, done: make(chan struct{})}
}

// Done is closed when the AI move has been applied (or the turn failed).
func (t *Turn) Done() <-chan struct{} { return t.done }

// Wait blocks until the turn completes or ctx ends. Cancelling ctx only
// stops the wait; the AI move still happens.
func (t *Turn) Wait(ctx context.Context) (*State, error) {
	select {
	case <-t.done:
		return t.state, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Turn) finish(state *State, err error) {
	t.state = state
	t.err = err
	close(t.done)
}
