package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/internal/stats"
)

const (
	defaultAIDelay = time.Second
	storeTimeout   = 5 * time.Second
	subscriberBuf  = 16
)

// Selector chooses the AI reply.
type Selector interface {
	Choose(pos chess.Position, color rules.Color) (chess.Selection, bool)
}

// ResultRecorder receives each finished game once.
type ResultRecorder interface {
	Record(ctx context.Context, res stats.Result) (*stats.Profile, error)
}

type Config struct {
	// AIDelay is how long the AI "thinks" before replying. Negative means none.
	AIDelay time.Duration
}

// Manager runs human-vs-AI sessions. The human plays light. Operations on one
// session are serialised; the AI reply runs as a background Turn and the
// session rejects human input until it completes.
type Manager struct {
	store    Store
	selector Selector
	recorder ResultRecorder
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sessionLock
	pending map[string]*Turn

	subsMu  sync.RWMutex
	subs    map[string]map[int]chan Event
	nextSub int

	wg sync.WaitGroup
}

func NewManager(store Store, selector Selector, recorder ResultRecorder, cfg Config, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if selector == nil {
		return nil, fmt.Errorf("move selector is required")
	}
	if cfg.AIDelay == 0 {
		cfg.AIDelay = defaultAIDelay
	}
	if cfg.AIDelay < 0 {
		cfg.AIDelay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		selector: selector,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sessionLock),
		pending:  make(map[string]*Turn),
		subs:     make(map[string]map[int]chan Event),
	}, nil
}

// Start opens a new session at the standard opening with light to move.
func (m *Manager) Start(ctx context.Context, meta Meta) (*State, error) {
	player := strings.TrimSpace(meta.Player)
	now := m.now()
	rec := &Record{
		ID:        uuid.NewString(),
		Player:    player,
		Game:      rules.NewGame().Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.logger.Info("chess_session_start",
		zap.String("session_id", rec.ID),
		zap.String("player", player),
	)
	return m.stateOf(rec)
}

// Status returns the current view of a session.
func (m *Manager) Status(ctx context.Context, id string) (*State, error) {
	unlock := m.lock(id)
	defer unlock()

	rec, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.stateOf(rec)
}

// Destinations lists where the light piece on from may go. Anything else
// (dark pieces, empty squares, AI's turn, finished game) yields nothing.
func (m *Manager) Destinations(ctx context.Context, id string, from rules.Square) ([]rules.Square, error) {
	unlock := m.lock(id)
	defer unlock()

	rec, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := rules.Restore(rec.Game)
	if err != nil {
		return nil, err
	}
	if g.Terminal() || g.Turn() != rules.Light || rec.Thinking {
		return []rules.Square{}, nil
	}
	if p := g.At(from); p.IsEmpty() || p.Color != rules.Light {
		return []rules.Square{}, nil
	}
	out := g.LegalDestinations(from)
	if out == nil {
		out = []rules.Square{}
	}
	return out, nil
}

// Play applies the human move and, if the game goes on, schedules the AI reply.
func (m *Manager) Play(ctx context.Context, id string, from, to rules.Square) (*MoveResult, error) {
	unlock := m.lock(id)
	defer unlock()

	rec, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.busy(id) || rec.Thinking {
		return nil, ErrSelectorBusy
	}
	g, err := rules.Restore(rec.Game)
	if err != nil {
		return nil, err
	}
	if g.Terminal() {
		return nil, ErrGameOver
	}
	if g.Turn() != rules.Light {
		return nil, ErrNotYourTurn
	}
	if !g.Move(from, to) {
		return nil, ErrIllegalMove
	}

	move := rules.Move{From: from, To: to}
	rec.Game = g.Snapshot()
	rec.UpdatedAt = m.now()
	needsReply := !g.Terminal() && g.Turn() == rules.Dark
	rec.Thinking = needsReply
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info("chess_move_applied",
		zap.String("session_id", id),
		zap.String("move", move.String()),
		zap.String("status", g.Status().String()),
	)

	if g.Terminal() {
		m.recordResult(ctx, rec, g)
	}

	var turn *Turn
	if needsReply {
		turn = m.schedule(id)
	}

	state, err := m.stateOf(rec)
	if err != nil {
		return nil, err
	}
	m.publish(Event{Type: EventMove, SessionID: id, By: rules.Light, Move: &move, State: state})
	if g.Terminal() {
		m.publish(Event{Type: EventGameOver, SessionID: id, State: state})
	}
	return &MoveResult{State: state, Move: move, Turn: turn}, nil
}

// Undo reverts plies moves. plies <= 0 rewinds to the human's previous turn.
// If the rewound position leaves the AI to move, a new reply is scheduled.
func (m *Manager) Undo(ctx context.Context, id string, plies int) (*State, *Turn, error) {
	unlock := m.lock(id)
	defer unlock()

	rec, err := m.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m.busy(id) || rec.Thinking {
		return nil, nil, ErrSelectorBusy
	}
	g, err := rules.Restore(rec.Game)
	if err != nil {
		return nil, nil, err
	}
	if g.HistoryLen() == 0 {
		return nil, nil, ErrNothingToUndo
	}

	undone := 0
	if plies <= 0 {
		for g.Undo() {
			undone++
			if g.Turn() == rules.Light {
				break
			}
		}
	} else {
		for undone < plies && g.Undo() {
			undone++
		}
	}

	rec.Game = g.Snapshot()
	rec.UpdatedAt = m.now()
	needsReply := !g.Terminal() && g.Turn() == rules.Dark
	rec.Thinking = needsReply
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}
	m.logger.Info("chess_undo",
		zap.String("session_id", id),
		zap.Int("plies", undone),
		zap.Int("history", g.HistoryLen()),
	)

	var turn *Turn
	if needsReply {
		turn = m.schedule(id)
	}
	state, err := m.stateOf(rec)
	if err != nil {
		return nil, nil, err
	}
	m.publish(Event{Type: EventUndo, SessionID: id, State: state})
	return state, turn, nil
}

// Reset puts the session back to the opening position.
func (m *Manager) Reset(ctx context.Context, id string) (*State, error) {
	unlock := m.lock(id)
	defer unlock()

	rec, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.busy(id) || rec.Thinking {
		return nil, ErrSelectorBusy
	}
	rec.Game = rules.NewGame().Snapshot()
	rec.Thinking = false
	rec.Recorded = false
	rec.UpdatedAt = m.now()
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.logger.Info("chess_session_reset", zap.String("session_id", id))

	state, err := m.stateOf(rec)
	if err != nil {
		return nil, err
	}
	m.publish(Event{Type: EventReset, SessionID: id, State: state})
	return state, nil
}

// Abandon drops the session. Subscribers get a final abandoned event and then
// their channels close. A pending AI reply completes with no move and no error.
func (m *Manager) Abandon(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()

	rec, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.Info("chess_session_abandon", zap.String("session_id", id))

	ev := Event{Type: EventAbandoned, SessionID: rec.ID}
	if state, err := m.stateOf(rec); err == nil {
		ev.State = state
	}
	m.publish(ev)
	m.closeSubscribers(rec.ID)
	return nil
}

// Await returns once any pending AI reply for id has completed.
func (m *Manager) Await(ctx context.Context, id string) (*State, error) {
	m.locksMu.Lock()
	t := m.pending[id]
	m.locksMu.Unlock()
	if t != nil {
		if _, err := t.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return m.Status(ctx, id)
}

// Subscribe streams events for id until cancel is called.
func (m *Manager) Subscribe(id string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuf)
	m.subsMu.Lock()
	m.nextSub++
	subID := m.nextSub
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]chan Event)
	}
	m.subs[id][subID] = ch
	m.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.subsMu.Lock()
			defer m.subsMu.Unlock()
			set := m.subs[id]
			if _, ok := set[subID]; !ok {
				// already closed by Abandon
				return
			}
			delete(set, subID)
			if len(set) == 0 {
				delete(m.subs, id)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (m *Manager) closeSubscribers(id string) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs[id] {
		close(ch)
	}
	delete(m.subs, id)
}

// Close waits for in-flight AI replies.
func (m *Manager) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) publish(ev Event) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, ch := range m.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			m.logger.Warn("chess_event_dropped",
				zap.String("session_id", ev.SessionID),
				zap.String("type", string(ev.Type)),
			)
		}
	}
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the per-session mutex and returns its release func. The entry
// lives only while someone holds or waits on it.
func (m *Manager) lock(id string) func() {
	m.locksMu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.locksMu.Unlock()
	}
}

func (m *Manager) busy(id string) bool {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	_, ok := m.pending[id]
	return ok
}

// load fetches the record and resumes a reply that was marked as thinking
// but has no goroutine in this process (e.g. after a restart).
func (m *Manager) load(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}
	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec == nil {
		return nil, ErrSessionNotFound
	}
	if rec.Thinking && !m.busy(id) {
		m.logger.Warn("chess_ai_turn_resumed", zap.String("session_id", id))
		m.schedule(id)
	}
	return rec, nil
}

func (m *Manager) schedule(id string) *Turn {
	t := newTurn(id)
	m.locksMu.Lock()
	m.pending[id] = t
	m.locksMu.Unlock()

	m.wg.Add(1)
	go m.runTurn(t)
	return t
}

func (m *Manager) runTurn(t *Turn) {
	defer m.wg.Done()
	if m.cfg.AIDelay > 0 {
		timer := time.NewTimer(m.cfg.AIDelay)
		<-timer.C
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	state, err := m.applyAIMove(ctx, t)
	t.finish(state, err)
	if err != nil {
		m.logger.Error("chess_ai_turn_failed", zap.String("session_id", t.SessionID), zap.Error(err))
	}
}

// applyAIMove plays the reply and publishes its events under the session
// lock. A session abandoned in the meantime yields (nil, nil).
func (m *Manager) applyAIMove(ctx context.Context, t *Turn) (*State, error) {
	id := t.SessionID
	unlock := m.lock(id)
	defer unlock()
	// pending is cleared under the session lock so busy() flips atomically
	defer func() {
		m.locksMu.Lock()
		if m.pending[id] == t {
			delete(m.pending, id)
		}
		m.locksMu.Unlock()
	}()

	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec == nil {
		m.logger.Debug("chess_ai_turn_dropped", zap.String("session_id", id))
		return nil, nil
	}
	g, err := rules.Restore(rec.Game)
	if err != nil {
		return nil, err
	}

	var ev *Event
	if !g.Terminal() && g.Turn() == rules.Dark {
		if sel, ok := m.selector.Choose(g, rules.Dark); ok {
			g.ApplyMove(sel.Move.From, sel.Move.To)
			mv := sel.Move
			ev = &Event{Type: EventAIMove, SessionID: id, By: rules.Dark, Move: &mv}
			m.logger.Info("chess_ai_move",
				zap.String("session_id", id),
				zap.String("move", mv.String()),
				zap.String("tier", sel.Tier.String()),
				zap.Int("candidates", sel.Candidates),
				zap.String("status", g.Status().String()),
			)
		}
	}

	rec.Game = g.Snapshot()
	rec.Thinking = false
	rec.UpdatedAt = m.now()
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if g.Terminal() {
		m.recordResult(ctx, rec, g)
	}

	state, err := m.stateOf(rec)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		ev.State = state
		m.publish(*ev)
		if g.Terminal() {
			m.publish(Event{Type: EventGameOver, SessionID: id, State: state})
		}
	}
	return state, nil
}

// recordResult reports a finished game once per session lifetime.
func (m *Manager) recordResult(ctx context.Context, rec *Record, g *rules.Game) {
	if m.recorder == nil || rec.Recorded || rec.Player == "" {
		return
	}
	_, err := m.recorder.Record(ctx, stats.Result{
		Player:    rec.Player,
		SessionID: rec.ID,
		Winner:    g.Winner(),
		Status:    g.Status(),
		Plies:     g.HistoryLen(),
		EndedAt:   m.now(),
	})
	if err != nil {
		m.logger.Warn("chess_result_record_failed", zap.String("session_id", rec.ID), zap.Error(err))
		return
	}
	rec.Recorded = true
	if err := m.store.Save(ctx, rec); err != nil {
		m.logger.Warn("chess_session_save_failed", zap.String("session_id", rec.ID), zap.Error(err))
	}
}

func (m *Manager) stateOf(rec *Record) (*State, error) {
	g, err := rules.Restore(rec.Game)
	if err != nil {
		return nil, err
	}
	return &State{
		ID:        rec.ID,
		Player:    rec.Player,
		Game:      g,
		Thinking:  rec.Thinking,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}
