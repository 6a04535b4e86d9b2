package clients

import (
	"fmt"
	"strings"
)

// QuestionProvider names a backend able to produce yes/no questions
type QuestionProvider string

const (
	// QuestionProviderGamma reads live markets from the Polymarket gamma API
	QuestionProviderGamma QuestionProvider = "gamma"

	// QuestionProviderHTTP calls a random-question endpoint of an adjacent service
	QuestionProviderHTTP QuestionProvider = "http"

	// QuestionProviderStatic serves a fixed rotation of questions
	QuestionProviderStatic QuestionProvider = "static"
)

// QuestionProviderConfig describes a provider
type QuestionProviderConfig struct {
	Provider    QuestionProvider `json:"provider"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	NeedsURL    bool             `json:"needs_url"`
}

// GetQuestionProviders returns all known question providers
func GetQuestionProviders() map[QuestionProvider]QuestionProviderConfig {
	return map[QuestionProvider]QuestionProviderConfig{
		QuestionProviderGamma: {
			Provider:    QuestionProviderGamma,
			Name:        "Polymarket Gamma",
			Description: "Random active yes/no market from gamma-api.polymarket.com",
		},
		QuestionProviderHTTP: {
			Provider:    QuestionProviderHTTP,
			Name:        "Question service",
			Description: "GET random-question endpoint returning {id, text, yesProb, noProb}",
			NeedsURL:    true,
		},
		QuestionProviderStatic: {
			Provider:    QuestionProviderStatic,
			Name:        "Static",
			Description: "Built-in rotation, for local play",
		},
	}
}

// ParseQuestionProvider validates a provider name, case-insensitively
func ParseQuestionProvider(s string) (QuestionProvider, error) {
	p := QuestionProvider(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := GetQuestionProviders()[p]; !ok {
		return "", fmt.Errorf("unknown question provider %q", s)
	}
	return p, nil
}
