package gamma_client

const (
	// Base URL
	BaseURL = "https://gamma-api.polymarket.com"

	// API Endpoints
	MarketsEndpoint = "/markets"

	// Markets fetched per question pick
	DefaultMarketLimit = 800

	// Outcome labels
	OutcomeYes = "Yes"
	OutcomeNo  = "No"
)
