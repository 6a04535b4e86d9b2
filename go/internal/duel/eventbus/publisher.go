package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/predictduel/go/internal/duel/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type Config struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	MaxMsgs         int64         // Max number of messages to keep
	Replicas        int
	DuplicateWindow time.Duration
	BufferSize      int           // Lifecycle events queued ahead of the publisher
	FlushTimeout    time.Duration // How long Close waits for outstanding acks
}

func DefaultConfig() Config {
	return Config{
		URL:             nats.DefaultURL,
		StreamName:      "DUEL_EVENTS",
		SubjectPrefix:   "duel.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          7 * 24 * time.Hour,
		MaxMsgs:         -1,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
		BufferSize:      1024,
		FlushTimeout:    5 * time.Second,
	}
}

// Envelope is the JSON body of every message on the stream
type Envelope struct {
	EventID   string               `json:"eventId"`
	EventType events.LifecycleType `json:"eventType"`
	DuelID    string               `json:"duelId"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   interface{}          `json:"payload"`
}

// Publisher forwards duel lifecycle events to JetStream. It implements the engine Observer;
// Observe only queues, publishing happens on a background goroutine with async acks.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config

	eventsCh chan events.Lifecycle
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("predictduel"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc,
		jetstream.WithPublishAsyncErrHandler(func(_ jetstream.JetStream, msg *nats.Msg, err error) {
			log.Error().
				Err(err).
				Str("subject", msg.Subject).
				Str("event_id", msg.Header.Get("Event-ID")).
				Msg("JetStream publish failed")
		}),
	)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := newPublisher(cfg)
	p.nc, p.js = nc, js

	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	p.wg.Add(1)
	go p.run()

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Str("stream", cfg.StreamName).
		Str("subject_prefix", cfg.SubjectPrefix).
		Msg("event bus connected")
	return p, nil
}

func newPublisher(cfg Config) *Publisher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	return &Publisher{
		config:   cfg,
		eventsCh: make(chan events.Lifecycle, cfg.BufferSize),
	}
}

func (p *Publisher) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Duel lifecycle events",
		Subjects:    []string{fmt.Sprintf("%s.>", p.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      p.config.MaxAge,
		MaxMsgs:     p.config.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    p.config.Replicas,
		Duplicates:  p.config.DuplicateWindow,
	}

	stream, err := p.js.CreateOrUpdateStream(ctx, sc)
	if err != nil {
		return fmt.Errorf("create or update stream: %w", err)
	}
	log.Info().Str("stream", stream.CachedInfo().Config.Name).Msg("JetStream stream ready")
	return nil
}

// Observe queues a lifecycle event for publishing. It never blocks; when the buffer is
// full the event is dropped with a warning.
func (p *Publisher) Observe(e events.Lifecycle) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.eventsCh <- e:
	default:
		log.Warn().
			Str("duel_id", e.DuelID).
			Str("event_type", string(e.Type)).
			Msg("event bus buffer full, dropping event")
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()

	for e := range p.eventsCh {
		msg, err := BuildMessage(p.config.SubjectPrefix, e, uuid.New())
		if err != nil {
			log.Error().Err(err).Str("duel_id", e.DuelID).Str("event_type", string(e.Type)).Msg("failed to build event")
			continue
		}

		if _, err := p.js.PublishMsgAsync(msg,
			jetstream.WithMsgID(msg.Header.Get("Event-ID")),
			jetstream.WithExpectStream(p.config.StreamName),
		); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Str("duel_id", e.DuelID).Msg("failed to publish event")
			continue
		}

		log.Debug().
			Str("subject", msg.Subject).
			Str("duel_id", e.DuelID).
			Str("event_type", string(e.Type)).
			Msg("published duel event")
	}
}

// Close stops accepting events, publishes what is queued and waits for outstanding acks
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.eventsCh)
	p.mu.Unlock()

	p.wg.Wait()

	if p.js != nil {
		select {
		case <-p.js.PublishAsyncComplete():
		case <-time.After(p.config.FlushTimeout):
			log.Warn().Int("pending", p.js.PublishAsyncPending()).Msg("timed out waiting for JetStream acks")
		}
	}
	if p.nc != nil {
		p.nc.Close()
	}
	log.Info().Msg("event bus closed")
	return nil
}

// BuildMessage renders e as a JetStream message on <prefix>.<eventType>
func BuildMessage(prefix string, e events.Lifecycle, eventID uuid.UUID) (*nats.Msg, error) {
	env := Envelope{
		EventID:   eventID.String(),
		EventType: e.Type,
		DuelID:    e.DuelID,
		Timestamp: e.Timestamp.UTC(),
		Payload:   e.Payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return &nats.Msg{
		Subject: fmt.Sprintf("%s.%s", prefix, e.Type),
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(e.Type)},
			"Duel-ID":    []string{e.DuelID},
			"Event-ID":   []string{eventID.String()},
		},
	}, nil
}
