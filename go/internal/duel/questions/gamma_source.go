package questions

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/mcdev12/predictduel/go/clients/gamma_client"
	"github.com/rs/zerolog/log"
)

// GammaSource picks a random active yes/no market from the Polymarket gamma API
type GammaSource struct {
	client *gamma_client.GammaClient
	limit  int
	pick   func(n int) int
}

// NewGammaSource creates a source over client listing at most limit markets per fetch
func NewGammaSource(client *gamma_client.GammaClient, limit int) *GammaSource {
	if limit <= 0 {
		limit = gamma_client.DefaultMarketLimit
	}
	return &GammaSource{
		client: client,
		limit:  limit,
		pick:   rand.IntN,
	}
}

func (s *GammaSource) FetchQuestion(ctx context.Context) (Question, error) {
	markets, err := s.client.GetActiveMarkets(ctx, s.limit)
	if err != nil {
		log.Debug().Err(err).Int("limit", s.limit).Msg("gamma market fetch failed")
		return Question{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	valid := make([]gamma_client.Market, 0, len(markets))
	for _, m := range markets {
		if m.IsYesNo() {
			valid = append(valid, m)
		}
	}
	if len(valid) == 0 {
		log.Debug().Int("markets", len(markets)).Msg("no yes/no markets in gamma response")
		return Question{}, fmt.Errorf("%w: no yes/no markets among %d", ErrSourceUnavailable, len(markets))
	}

	m := valid[s.pick(len(valid))]
	yes, no := m.Prices()
	q := Question{
		ID:      m.ID,
		Text:    m.DisplayText(),
		YesProb: yes,
		NoProb:  no,
	}
	if err := validate(q); err != nil {
		return Question{}, err
	}
	return q, nil
}
