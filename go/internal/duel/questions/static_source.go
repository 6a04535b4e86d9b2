package questions

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StaticSource rotates through a fixed list of questions
type StaticSource struct {
	questions []Question
	next      atomic.Uint64
}

func NewStaticSource(questions ...Question) *StaticSource {
	return &StaticSource{questions: questions}
}

func (s *StaticSource) FetchQuestion(ctx context.Context) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if len(s.questions) == 0 {
		return Question{}, fmt.Errorf("%w: empty question list", ErrSourceUnavailable)
	}
	i := s.next.Add(1) - 1
	return s.questions[i%uint64(len(s.questions))], nil
}

// DefaultStaticQuestions is the rotation used for local play
func DefaultStaticQuestions() []Question {
	return []Question{
		{ID: "static-1", Text: "Will Bitcoin close the year above its January open?", YesProb: 0.62, NoProb: 0.38},
		{ID: "static-2", Text: "Will the next Fed meeting cut rates?", YesProb: 0.41, NoProb: 0.59},
		{ID: "static-3", Text: "Will Ethereum flip Bitcoin by market cap this year?", YesProb: 0.04, NoProb: 0.96},
		{ID: "static-4", Text: "Will a new all-time high be set in the S&P 500 this quarter?", YesProb: 0.55, NoProb: 0.45},
		{ID: "static-5", Text: "Will the home team win tonight's final?", YesProb: 0.5, NoProb: 0.5},
	}
}
