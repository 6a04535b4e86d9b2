package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mcdev12/predictduel/go/clients"
	"github.com/rs/zerolog/log"
)

// HTTPSource calls a random-question endpoint of the adjacent question service
type HTTPSource struct {
	client *clients.BaseClient
}

// NewHTTPSource creates a source that GETs url for every question
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{client: clients.NewBaseClient(url)}
}

// Client exposes the underlying HTTP client for tuning timeouts and headers
func (s *HTTPSource) Client() *clients.BaseClient {
	return s.client
}

type randomQuestionResponse struct {
	ID       json.RawMessage `json:"id"`
	Text     string          `json:"text"`
	Question string          `json:"question"`
	YesProb  float64         `json:"yesProb"`
	NoProb   float64         `json:"noProb"`
}

func (s *HTTPSource) FetchQuestion(ctx context.Context) (Question, error) {
	body, err := s.client.Get(ctx, "")
	if err != nil {
		log.Debug().Err(err).Str("url", s.client.BaseURL()).Msg("question fetch failed")
		return Question{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var resp randomQuestionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Debug().Err(err).Int("bytes", len(body)).Msg("question response is not JSON")
		return Question{}, fmt.Errorf("%w: decode response: %v", ErrSourceUnavailable, err)
	}

	text := resp.Text
	if strings.TrimSpace(text) == "" {
		text = resp.Question
	}
	q := Question{
		ID:      strings.Trim(string(resp.ID), `"`),
		Text:    text,
		YesProb: resp.YesProb,
		NoProb:  resp.NoProb,
	}
	if err := validate(q); err != nil {
		return Question{}, err
	}
	return q, nil
}

func validate(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question has no text", ErrSourceUnavailable)
	}
	if math.IsNaN(q.YesProb) || math.IsNaN(q.NoProb) {
		return fmt.Errorf("%w: question has no usable probabilities", ErrSourceUnavailable)
	}
	return nil
}
