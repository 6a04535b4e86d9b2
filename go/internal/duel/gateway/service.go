package gateway

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the duel gateway: it terminates player WebSockets and feeds the engine
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
}

// Config holds configuration for the duel gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default configuration for the duel gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates a new duel gateway service
func NewService(config Config, eng Engine) *Service {
	connectionManager := NewConnectionManager(config.ConnectionConfig, eng)
	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
	}
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Str("path", DuelPath).Msg("duel gateway routes registered")
}

// Stop closes every player connection
func (s *Service) Stop() {
	s.connectionManager.CloseAll()
	log.Info().Msg("duel gateway stopped")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
