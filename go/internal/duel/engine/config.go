package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/predictduel/go/internal/duel/questions"
)

// FailurePolicy decides what a duel does when the question source fails
type FailurePolicy string

const (
	// FailurePolicyFallback serves Config.FallbackQuestion and keeps playing
	FailurePolicyFallback FailurePolicy = "fallback"
	// FailurePolicyAbort tears the duel down as abandoned
	FailurePolicyAbort FailurePolicy = "abort"
)

// Interoperability constants shared with existing clients
const (
	DefaultRoundsTotal     = 5
	DefaultRoundTime       = 15000 * time.Millisecond
	DefaultAwardPerCorrect = 10
	DefaultInterRoundDelay = 2000 * time.Millisecond
)

// Config holds the duel rules
type Config struct {
	RoundsTotal      int
	RoundTime        time.Duration
	AwardPerCorrect  int
	InterRoundDelay  time.Duration
	QuestionTimeout  time.Duration
	OnSourceFailure  FailurePolicy
	FallbackQuestion questions.Question
}

// DefaultConfig returns the rules existing clients expect
func DefaultConfig() Config {
	return Config{
		RoundsTotal:     DefaultRoundsTotal,
		RoundTime:       DefaultRoundTime,
		AwardPerCorrect: DefaultAwardPerCorrect,
		InterRoundDelay: DefaultInterRoundDelay,
		QuestionTimeout: 10 * time.Second,
		OnSourceFailure: FailurePolicyFallback,
		FallbackQuestion: questions.Question{
			ID:      "fallback",
			Text:    "Will the crowd favorite win this round?",
			YesProb: 0.5,
			NoProb:  0.5,
		},
	}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	switch {
	case c.RoundsTotal <= 0:
		return errors.New("rounds total must be positive")
	case c.RoundTime <= 0:
		return errors.New("round time must be positive")
	case c.InterRoundDelay < 0:
		return errors.New("inter round delay must not be negative")
	case c.AwardPerCorrect < 0:
		return errors.New("award per correct must not be negative")
	case c.QuestionTimeout <= 0:
		return errors.New("question timeout must be positive")
	}
	switch c.OnSourceFailure {
	case FailurePolicyFallback:
		if c.FallbackQuestion.Text == "" {
			return errors.New("fallback policy needs a fallback question")
		}
	case FailurePolicyAbort:
	default:
		return fmt.Errorf("unknown source failure policy %q", c.OnSourceFailure)
	}
	return nil
}

// roundTimeSeconds is the deadline length as announced to clients, rounded up so the
// announced deadline is never shorter than the enforced one
func (c Config) roundTimeSeconds() int {
	return int((c.RoundTime + time.Second - 1) / time.Second)
}
