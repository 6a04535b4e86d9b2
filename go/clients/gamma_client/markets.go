package gamma_client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StringList decodes either a JSON array or a JSON string holding an encoded array.
// The gamma API uses both shapes for outcomes and outcomePrices.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if string(data) == "null" || len(data) == 0 {
		*l = nil
		return nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		if strings.TrimSpace(encoded) == "" {
			*l = nil
			return nil
		}
		data = []byte(encoded)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, strings.TrimSpace(string(item)))
	}
	*l = out
	return nil
}

// Index returns the position of value in the list, or -1
func (l StringList) Index(value string) int {
	for i, v := range l {
		if v == value {
			return i
		}
	}
	return -1
}

// Float parses the element at i, returning 0 when it is missing or not a number
func (l StringList) Float(i int) float64 {
	if i < 0 || i >= len(l) {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(l[i]), 64)
	if err != nil {
		return 0
	}
	return f
}

type Market struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Category      string     `json:"category"`
	Outcomes      StringList `json:"outcomes"`
	OutcomePrices StringList `json:"outcomePrices"`
}

// IsYesNo reports whether the market has both a Yes and a No outcome
func (m Market) IsYesNo() bool {
	return m.Outcomes.Index(OutcomeYes) >= 0 && m.Outcomes.Index(OutcomeNo) >= 0
}

// Prices returns the Yes and No prices, matched by outcome label
func (m Market) Prices() (yes, no float64) {
	return m.OutcomePrices.Float(m.Outcomes.Index(OutcomeYes)), m.OutcomePrices.Float(m.Outcomes.Index(OutcomeNo))
}

// DisplayText picks the best available human readable text for the market
func (m Market) DisplayText() string {
	switch {
	case strings.TrimSpace(m.Question) != "":
		return m.Question
	case strings.TrimSpace(m.Title) != "":
		return m.Title
	case strings.TrimSpace(m.Slug) != "":
		return strings.ReplaceAll(m.Slug, "-", " ")
	default:
		return "Unknown question"
	}
}

// GetActiveMarkets lists active markets, at most limit of them
func (c *GammaClient) GetActiveMarkets(ctx context.Context, limit int) ([]Market, error) {
	if limit <= 0 {
		limit = DefaultMarketLimit
	}
	endpoint := fmt.Sprintf("%s?limit=%d&active=true", MarketsEndpoint, limit)
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get markets: %w", err)
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal markets: %w", err)
	}
	return markets, nil
}
