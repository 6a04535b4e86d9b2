package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/predictduel/go/internal/duel/events"
	"github.com/mcdev12/predictduel/go/internal/duel/questions"
	"github.com/mcdev12/predictduel/go/internal/duel/settlement"
	"github.com/rs/zerolog/log"
)

// Status is the position of a duel in its round state machine
type Status int

const (
	StatusMatched Status = iota
	StatusRoundActive
	StatusRoundResolved
	StatusFinished
	StatusAbandoned
)

func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusRoundActive:
		return "round_active"
	case StatusRoundResolved:
		return "round_resolved"
	case StatusFinished:
		return "finished"
	case StatusAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

func (s Status) terminal() bool {
	return s == StatusFinished || s == StatusAbandoned
}

// timerPhase tells what the single session timer is currently armed for
type timerPhase int

const (
	phaseNone timerPhase = iota
	phaseDeadline
	phaseNextRound
)

type player struct {
	conn     Conn
	wallet   string
	username string
	score    int
	answer   events.Choice
}

// sessionMsg is an event delivered to the session's mailbox
type sessionMsg interface {
	sessionMsg()
}

type answerMsg struct {
	slot   int
	choice events.Choice
}

type leaveMsg struct {
	slot int
}

func (answerMsg) sessionMsg() {}
func (leaveMsg) sessionMsg()  {}

type questionResult struct {
	round    int
	question questions.Question
	err      error
}

// Session is one duel. Every field below the channels is owned by the run goroutine,
// so answers, timer expiry and question arrival are serialized without locks.
type Session struct {
	engine  *Engine
	id      uuid.UUID
	cfg     Config
	clock   clockwork.Clock
	players [2]*player

	mailbox    chan sessionMsg
	questionCh chan questionResult
	done       chan struct{}

	status   Status
	round    int
	question questions.Question
	correct  events.Choice
	timer    clockwork.Timer
	phase    timerPhase
}

func newSession(e *Engine, pair [2]WaitingEntry) *Session {
	s := &Session{
		engine:     e,
		id:         uuid.New(),
		cfg:        e.cfg,
		clock:      e.clock,
		mailbox:    make(chan sessionMsg),
		questionCh: make(chan questionResult, 1),
		done:       make(chan struct{}),
		status:     StatusMatched,
	}
	for i, w := range pair {
		s.players[i] = &player{conn: w.Conn, wallet: w.Wallet, username: w.Username}
	}
	return s
}

// ID returns the duel id
func (s *Session) ID() uuid.UUID {
	return s.id
}

// post delivers m to the session. It returns once the session took the message, or
// immediately if the session already ended.
func (s *Session) post(m sessionMsg) {
	select {
	case s.mailbox <- m:
	case <-s.done:
	}
}

func (s *Session) run(ctx context.Context) {
	defer s.engine.wg.Done()
	defer close(s.done)

	s.announceMatch()
	s.startRound(ctx)

	for !s.status.terminal() {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case m := <-s.mailbox:
			switch m := m.(type) {
			case answerMsg:
				s.onAnswer(m)
			case leaveMsg:
				s.abandon(m.slot)
			}
		case res := <-s.questionCh:
			s.onQuestion(res)
		case <-s.timerChan():
			s.onTimer(ctx)
		}
	}
}

// startRound advances the round index and requests a question, or finishes the duel
// once every round was played.
func (s *Session) startRound(ctx context.Context) {
	s.round++
	if s.round > s.cfg.RoundsTotal {
		s.finish()
		return
	}

	for _, p := range s.players {
		p.answer = events.ChoiceNone
	}
	s.correct = events.ChoiceNone

	go s.fetchQuestion(ctx, s.round)
}

// fetchQuestion runs off the session goroutine so a slow source never stalls the duel
func (s *Session) fetchQuestion(ctx context.Context, round int) {
	fctx, cancel := context.WithTimeout(ctx, s.cfg.QuestionTimeout)
	defer cancel()

	q, err := s.engine.source.FetchQuestion(fctx)
	select {
	case s.questionCh <- questionResult{round: round, question: q, err: err}:
	case <-s.done:
	}
}

func (s *Session) onQuestion(res questionResult) {
	if res.round != s.round || s.status.terminal() {
		return
	}

	q := res.question
	if res.err != nil {
		log.Warn().
			Err(res.err).
			Str("duel_id", s.id.String()).
			Int("round", s.round).
			Str("policy", string(s.cfg.OnSourceFailure)).
			Msg("question source failed")
		if s.cfg.OnSourceFailure == FailurePolicyAbort {
			s.abort("question source unavailable")
			return
		}
		q = s.cfg.FallbackQuestion
	}

	s.question = q
	s.correct = q.ResolvedSide()
	s.status = StatusRoundActive

	s.broadcast(func(int) events.Outbound {
		return events.RoundStart{
			Round:       s.round,
			TotalRounds: s.cfg.RoundsTotal,
			Question:    q.View(),
			RoundTime:   s.cfg.roundTimeSeconds(),
		}
	})
	s.arm(s.cfg.RoundTime, phaseDeadline)

	log.Debug().
		Str("duel_id", s.id.String()).
		Int("round", s.round).
		Str("question_id", q.ID).
		Msg("round started")
}

func (s *Session) onAnswer(m answerMsg) {
	if s.status != StatusRoundActive {
		return
	}
	p := s.players[m.slot]
	if p.answer != events.ChoiceNone {
		log.Debug().Str("duel_id", s.id.String()).Int("slot", m.slot).Msg("ignoring repeated answer")
		return
	}
	p.answer = m.choice

	if s.players[0].answer != events.ChoiceNone && s.players[1].answer != events.ChoiceNone {
		s.resolve(false)
	}
}

func (s *Session) onTimer(ctx context.Context) {
	phase := s.phase
	s.timer, s.phase = nil, phaseNone

	switch phase {
	case phaseDeadline:
		s.resolve(true)
	case phaseNextRound:
		if s.status == StatusRoundResolved {
			s.startRound(ctx)
		}
	}
}

// resolve settles the in-flight round. Only the first call per round has an effect.
func (s *Session) resolve(timedOut bool) {
	if s.status != StatusRoundActive {
		return
	}
	s.status = StatusRoundResolved
	s.cancelTimer()

	var deltas [2]int
	for i, p := range s.players {
		if p.answer == s.correct {
			deltas[i] = s.cfg.AwardPerCorrect
			p.score += deltas[i]
		}
	}
	s.settle(deltas)

	s.broadcast(func(slot int) events.Outbound {
		me, opp := s.players[slot], s.players[1-slot]
		return events.RoundResult{
			CorrectAnswer:      s.correct,
			YourAnswer:         me.answer,
			OpponentAnswer:     opp.answer,
			RoundDelta:         deltas[slot],
			TotalScore:         me.score,
			OpponentTotalScore: opp.score,
		}
	})
	s.observe(events.LifecycleRoundResolved, events.RoundResolvedPayload{
		DuelID:        s.id.String(),
		Round:         s.round,
		QuestionID:    s.question.ID,
		CorrectAnswer: s.correct,
		Answers:       [2]events.Choice{s.players[0].answer, s.players[1].answer},
		Deltas:        deltas,
		Scores:        s.scores(),
		TimedOut:      timedOut,
		ResolvedAt:    s.clock.Now(),
	})

	log.Info().
		Str("duel_id", s.id.String()).
		Int("round", s.round).
		Bool("timed_out", timedOut).
		Int("score_0", s.players[0].score).
		Int("score_1", s.players[1].score).
		Msg("round resolved")

	s.arm(s.cfg.InterRoundDelay, phaseNextRound)
}

func (s *Session) settle(deltas [2]int) {
	for i, p := range s.players {
		s.engine.settler.Settle(settlement.Award{
			DuelID: s.id.String(),
			Round:  s.round,
			Wallet: p.wallet,
			Delta:  deltas[i],
		})
	}
}

func (s *Session) finish() {
	s.cancelTimer()
	s.status = StatusFinished
	s.engine.release(s)

	winner := events.WinnerDraw
	switch {
	case s.players[0].score > s.players[1].score:
		winner = s.players[0].wallet
	case s.players[1].score > s.players[0].score:
		winner = s.players[1].wallet
	}

	s.broadcast(func(slot int) events.Outbound {
		return events.DuelFinished{
			YourScore:     s.players[slot].score,
			OpponentScore: s.players[1-slot].score,
			Winner:        winner,
		}
	})
	s.observe(events.LifecycleDuelFinished, events.DuelFinishedPayload{
		DuelID:     s.id.String(),
		Scores:     s.scores(),
		Winner:     winner,
		FinishedAt: s.clock.Now(),
	})

	log.Info().
		Str("duel_id", s.id.String()).
		Str("winner", winner).
		Int("score_0", s.players[0].score).
		Int("score_1", s.players[1].score).
		Msg("duel finished")
}

// abandon ends the duel without a winner because the player in leaverSlot disconnected
func (s *Session) abandon(leaverSlot int) {
	s.cancelTimer()
	s.status = StatusAbandoned
	s.engine.release(s)

	s.players[1-leaverSlot].conn.Send(events.OpponentLeft{})
	s.observe(events.LifecycleDuelAbandoned, events.DuelAbandonedPayload{
		DuelID:      s.id.String(),
		Round:       s.round,
		Reason:      "opponent_left",
		LeaverSlot:  leaverSlot,
		AbandonedAt: s.clock.Now(),
	})

	log.Info().
		Str("duel_id", s.id.String()).
		Int("round", s.round).
		Int("slot", leaverSlot).
		Str("wallet", s.players[leaverSlot].wallet).
		Msg("duel abandoned")
}

// abort ends the duel without a winner because it cannot continue
func (s *Session) abort(reason string) {
	s.cancelTimer()
	s.status = StatusAbandoned
	s.engine.release(s)

	s.broadcast(func(int) events.Outbound {
		return events.Error{Error: reason}
	})
	s.observe(events.LifecycleDuelAbandoned, events.DuelAbandonedPayload{
		DuelID:      s.id.String(),
		Round:       s.round,
		Reason:      reason,
		LeaverSlot:  -1,
		AbandonedAt: s.clock.Now(),
	})

	log.Warn().Str("duel_id", s.id.String()).Int("round", s.round).Str("reason", reason).Msg("duel aborted")
}

func (s *Session) shutdown() {
	s.cancelTimer()
	s.status = StatusAbandoned
	s.engine.release(s)
	log.Info().Str("duel_id", s.id.String()).Int("round", s.round).Msg("duel stopped by shutdown")
}

func (s *Session) announceMatch() {
	s.broadcast(func(slot int) events.Outbound {
		opp := s.players[1-slot]
		return events.MatchFound{
			Opponent:    events.Opponent{Wallet: opp.wallet, Username: opp.username},
			TotalRounds: s.cfg.RoundsTotal,
		}
	})

	participants := make([]events.Participant, 0, len(s.players))
	for i, p := range s.players {
		participants = append(participants, events.Participant{Slot: i, Wallet: p.wallet, Username: p.username})
	}
	s.observe(events.LifecycleDuelStarted, events.DuelStartedPayload{
		DuelID:       s.id.String(),
		Participants: participants,
		TotalRounds:  s.cfg.RoundsTotal,
		StartedAt:    s.clock.Now(),
	})
}

// broadcast sends each slot its own view of the same transition
func (s *Session) broadcast(view func(slot int) events.Outbound) {
	for slot, p := range s.players {
		p.conn.Send(view(slot))
	}
}

func (s *Session) observe(t events.LifecycleType, payload interface{}) {
	s.engine.observer.Observe(events.Lifecycle{
		DuelID:    s.id.String(),
		Type:      t,
		Timestamp: s.clock.Now(),
		Payload:   payload,
	})
}

func (s *Session) scores() [2]int {
	return [2]int{s.players[0].score, s.players[1].score}
}
