package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/predictduel/go/internal/duel/events"
	"github.com/mcdev12/predictduel/go/internal/duel/questions"
	"github.com/mcdev12/predictduel/go/internal/duel/settlement"
	"github.com/rs/zerolog/log"
)

// Conn is a live client connection. Send must not block.
type Conn interface {
	ID() string
	Send(msg events.Outbound)
}

// Settler receives the point deltas of every resolved round
type Settler interface {
	Settle(a settlement.Award)
}

// Observer is notified of duel lifecycle transitions. Observe must not block.
type Observer interface {
	Observe(e events.Lifecycle)
}

type nopSettler struct{}

func (nopSettler) Settle(settlement.Award) {}

type nopObserver struct{}

func (nopObserver) Observe(events.Lifecycle) {}

// Deps are the collaborators of the engine
type Deps struct {
	Source   questions.Source
	Settler  Settler
	Observer Observer
	Clock    clockwork.Clock
}

// binding is the Connection Registry entry: a connection seated in a duel slot
type binding struct {
	session *Session
	slot    int
}

// Stats is a snapshot of the engine's bookkeeping
type Stats struct {
	Waiting          int `json:"waiting"`
	ActiveDuels      int `json:"active_duels"`
	BoundConnections int `json:"bound_connections"`
}

// Engine owns the matchmaking queue, the connection registry and the set of active duels.
// All other components interact with duels through its methods.
type Engine struct {
	cfg      Config
	source   questions.Source
	settler  Settler
	observer Observer
	clock    clockwork.Clock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	queue *Queue

	mu       sync.Mutex
	bindings map[string]binding
	duels    map[uuid.UUID]*Session
	closed   bool
}

// New creates an engine. Source is required; the other deps default to no-ops and a real clock.
func New(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid duel config: %w", err)
	}
	if deps.Source == nil {
		return nil, errors.New("question source is required")
	}
	if deps.Settler == nil {
		deps.Settler = nopSettler{}
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:      cfg,
		source:   deps.Source,
		settler:  deps.Settler,
		observer: deps.Observer,
		clock:    deps.Clock,
		ctx:      ctx,
		cancel:   cancel,
		queue:    NewQueue(),
		bindings: make(map[string]binding),
		duels:    make(map[uuid.UUID]*Session),
	}, nil
}

// Config returns the rules the engine plays with
func (e *Engine) Config() Config {
	return e.cfg
}

// Join validates an init message and enqueues the connection. When a second player is
// waiting, a duel is created and started.
func (e *Engine) Join(conn Conn, msg events.Init) {
	wallet := strings.TrimSpace(msg.Wallet)
	username := strings.TrimSpace(msg.Username)
	if wallet == "" || username == "" {
		conn.Send(events.Error{Error: "Wallet + username required"})
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		conn.Send(events.Error{Error: "server is shutting down"})
		return
	}
	if _, bound := e.bindings[conn.ID()]; bound {
		e.mu.Unlock()
		conn.Send(events.Error{Error: "already in a duel"})
		return
	}

	pair, matched, err := e.queue.Enqueue(WaitingEntry{Conn: conn, Wallet: wallet, Username: username})
	if err != nil {
		e.mu.Unlock()
		log.Debug().Err(err).Str("connection_id", conn.ID()).Str("wallet", wallet).Msg("init rejected")
		conn.Send(events.Error{Error: err.Error()})
		return
	}

	// waiting goes out before the entry can be paired by anyone else
	conn.Send(events.Waiting{})

	var s *Session
	if matched {
		s = e.createDuelLocked(pair)
	}
	e.mu.Unlock()

	log.Info().Str("connection_id", conn.ID()).Str("wallet", wallet).Msg("player waiting")
	if s != nil {
		go s.run(e.ctx)
	}
}

// createDuelLocked seats the pair in a new session. Caller holds e.mu.
func (e *Engine) createDuelLocked(pair [2]WaitingEntry) *Session {
	s := newSession(e, pair)
	e.duels[s.id] = s
	for slot, p := range s.players {
		e.bindings[p.conn.ID()] = binding{session: s, slot: slot}
	}
	e.wg.Add(1)

	log.Info().
		Str("duel_id", s.id.String()).
		Str("wallet_0", pair[0].Wallet).
		Str("wallet_1", pair[1].Wallet).
		Msg("duel created")
	return s
}

// Answer routes a choice to the duel the connection is seated in. Anything that is not a
// valid choice, or that arrives from an unseated connection, is ignored.
func (e *Engine) Answer(connID string, msg events.Answer) {
	choice, ok := events.ParseChoice(msg.Choice)
	if !ok {
		log.Debug().Str("connection_id", connID).Str("choice", msg.Choice).Msg("ignoring invalid choice")
		return
	}

	e.mu.Lock()
	b, ok := e.bindings[connID]
	e.mu.Unlock()
	if !ok {
		return
	}
	b.session.post(answerMsg{slot: b.slot, choice: choice})
}

// Leave handles a closed connection: queued connections are dropped from the queue,
// seated ones abandon their duel.
func (e *Engine) Leave(connID string) {
	e.mu.Lock()
	if e.queue.RemoveIfWaiting(connID) {
		e.mu.Unlock()
		log.Info().Str("connection_id", connID).Msg("waiting player left")
		return
	}
	b, ok := e.bindings[connID]
	if ok {
		delete(e.bindings, connID)
	}
	e.mu.Unlock()

	if ok {
		b.session.post(leaveMsg{slot: b.slot})
	}
}

// release removes a terminated session from the active set and unseats its players
func (e *Engine) release(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.duels, s.id)
	for _, p := range s.players {
		if b, ok := e.bindings[p.conn.ID()]; ok && b.session == s {
			delete(e.bindings, p.conn.ID())
		}
	}
}

// ActiveDuels returns the number of duels in progress
func (e *Engine) ActiveDuels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.duels)
}

// Waiting returns the number of players in the matchmaking queue
func (e *Engine) Waiting() int {
	return e.queue.Len()
}

// Stats returns a snapshot of queue and registry sizes
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Waiting:          e.queue.Len(),
		ActiveDuels:      len(e.duels),
		BoundConnections: len(e.bindings),
	}
}

// Shutdown stops accepting players, tears down every session and waits for them to exit
func (e *Engine) Shutdown() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
	log.Info().Msg("duel engine stopped")
}
