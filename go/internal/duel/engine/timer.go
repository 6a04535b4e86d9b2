package engine

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// arm replaces the session timer with a new one firing after d
func (s *Session) arm(d time.Duration, phase timerPhase) {
	if s.timer != nil {
		stopAndDrainTimer(s.timer)
		log.Debug().Str("duel_id", s.id.String()).Msg("replaced existing timer")
	}
	s.timer = s.clock.NewTimer(d)
	s.phase = phase
}

// cancelTimer stops the session timer, if any
func (s *Session) cancelTimer() {
	if s.timer == nil {
		return
	}
	stopAndDrainTimer(s.timer)
	s.timer, s.phase = nil, phaseNone
}

// timerChan returns the armed timer's channel. With no timer armed it returns nil,
// which blocks forever inside a select.
func (s *Session) timerChan() <-chan time.Time {
	if s.timer == nil {
		return nil
	}
	return s.timer.Chan()
}

// stopAndDrainTimer stops a timer and drains its channel so a stale fire is never observed
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
