package gateway

import (
	"github.com/mcdev12/predictduel/go/internal/duel/engine"
	"github.com/mcdev12/predictduel/go/internal/duel/events"
	"github.com/rs/zerolog/log"
)

// Dispatcher routes decoded client frames to the engine
type Dispatcher struct {
	engine Engine
}

func NewDispatcher(eng Engine) *Dispatcher {
	return &Dispatcher{engine: eng}
}

// Dispatch handles one frame from conn. Malformed and unknown frames are dropped without a reply.
func (d *Dispatcher) Dispatch(conn engine.Conn, frame []byte) {
	msg, err := events.DecodeInbound(frame)
	if err != nil {
		log.Debug().Err(err).Str("connection_id", conn.ID()).Int("size", len(frame)).Msg("dropping client frame")
		return
	}

	switch m := msg.(type) {
	case events.Init:
		d.engine.Join(conn, m)
	case events.Answer:
		d.engine.Answer(conn.ID(), m)
	default:
		log.Debug().Str("connection_id", conn.ID()).Str("message_type", string(msg.Type())).Msg("unhandled message type")
	}
}
