package questions

import (
	"context"
	"errors"

	"github.com/mcdev12/predictduel/go/internal/duel/events"
)

// ErrSourceUnavailable is returned when no valid yes/no question can be produced
var ErrSourceUnavailable = errors.New("question source unavailable")

// Question is one yes/no prediction with the market's probabilities
type Question struct {
	ID      string  `json:"id" yaml:"id"`
	Text    string  `json:"text" yaml:"text"`
	YesProb float64 `json:"yesProb" yaml:"yes_prob"`
	NoProb  float64 `json:"noProb" yaml:"no_prob"`
}

// ResolvedSide is the side deemed correct. Ties favor yes.
func (q Question) ResolvedSide() events.Choice {
	if q.YesProb >= q.NoProb {
		return events.ChoiceYes
	}
	return events.ChoiceNo
}

// View is what players get to see in round_start
func (q Question) View() events.QuestionView {
	return events.QuestionView{Text: q.Text, YesProb: q.YesProb, NoProb: q.NoProb}
}

// Source produces one question per call. Implementations must be safe for concurrent use.
type Source interface {
	FetchQuestion(ctx context.Context) (Question, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (Question, error)

func (f SourceFunc) FetchQuestion(ctx context.Context) (Question, error) {
	return f(ctx)
}
