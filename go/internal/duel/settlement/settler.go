package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/mcdev12/predictduel/go/internal/duel/ledger"
	"github.com/rs/zerolog/log"
)

// Award is one point delta earned by a wallet in a round
type Award struct {
	DuelID string
	Round  int
	Wallet string
	Delta  int
}

// Config holds configuration for the settlement workers
type Config struct {
	Field        string
	NumWorkers   int
	QueueSize    int
	WriteTimeout time.Duration
}

// DefaultConfig returns default settlement configuration
func DefaultConfig() Config {
	return Config{
		Field:        ledger.FieldDuelScore,
		NumWorkers:   4,
		QueueSize:    1024,
		WriteTimeout: 5 * time.Second,
	}
}

// Settler applies awards to the ledger in the background. Settle never blocks the caller;
// ledger failures are logged and dropped.
type Settler struct {
	ledger ledger.Ledger
	cfg    Config

	workCh chan Award
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewSettler creates a settler writing to l
func NewSettler(l ledger.Ledger, cfg Config) *Settler {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Field == "" {
		cfg.Field = ledger.FieldDuelScore
	}
	return &Settler{
		ledger: l,
		cfg:    cfg,
		workCh: make(chan Award, cfg.QueueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until Close.
func (s *Settler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true

	for i := 0; i < s.cfg.NumWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	log.Info().Int("workers", s.cfg.NumWorkers).Str("field", s.cfg.Field).Msg("settlement started")
}

// Settle queues an award. Zero deltas are skipped.
func (s *Settler) Settle(a Award) {
	if a.Delta == 0 {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		log.Warn().
			Str("duel_id", a.DuelID).
			Str("wallet", a.Wallet).
			Int("delta", a.Delta).
			Msg("settlement closed, dropping award")
		return
	}

	select {
	case s.workCh <- a:
	default:
		log.Warn().
			Str("duel_id", a.DuelID).
			Int("round", a.Round).
			Str("wallet", a.Wallet).
			Int("delta", a.Delta).
			Msg("settlement queue full, dropping award")
	}
}

// Close stops accepting awards and waits for queued ones to be written
func (s *Settler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.workCh)
	started := s.started
	s.mu.Unlock()

	if started {
		s.wg.Wait()
	}
	log.Info().Msg("settlement stopped")
}

func (s *Settler) worker(workerID int) {
	defer s.wg.Done()

	for a := range s.workCh {
		s.apply(workerID, a)
	}
}

func (s *Settler) apply(workerID int, a Award) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.ledger.Increment(ctx, a.Wallet, s.cfg.Field, a.Delta); err != nil {
		log.Error().
			Err(err).
			Str("duel_id", a.DuelID).
			Int("round", a.Round).
			Str("wallet", a.Wallet).
			Int("delta", a.Delta).
			Int("worker_id", workerID).
			Msg("ledger increment failed")
		return
	}

	log.Debug().
		Str("duel_id", a.DuelID).
		Int("round", a.Round).
		Str("wallet", a.Wallet).
		Int("delta", a.Delta).
		Msg("award settled")
}
