package gamma_client

import (
	"github.com/mcdev12/predictduel/go/clients"
)

type GammaClient struct {
	*clients.BaseClient
}

// NewGammaClient builds a client against baseURL, or the public API when empty
func NewGammaClient(baseURL string) *GammaClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &GammaClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}
