package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/predictduel/go/internal/duel/events"
)

func TestBuildMessage(t *testing.T) {
	id := uuid.MustParse("6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6")
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := events.Lifecycle{
		DuelID:    "duel-1",
		Type:      events.LifecycleDuelFinished,
		Timestamp: at,
		Payload: events.DuelFinishedPayload{
			DuelID:     "duel-1",
			Scores:     [2]int{50, 30},
			Winner:     "WA",
			FinishedAt: at,
		},
	}

	msg, err := BuildMessage("duel.events", e, id)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if msg.Subject != "duel.events.DuelFinished" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if got := msg.Header.Get("Event-ID"); got != id.String() {
		t.Fatalf("Event-ID header = %q", got)
	}
	if got := msg.Header.Get("Duel-ID"); got != "duel-1" {
		t.Fatalf("Duel-ID header = %q", got)
	}

	var env struct {
		EventID   string    `json:"eventId"`
		EventType string    `json:"eventType"`
		DuelID    string    `json:"duelId"`
		Timestamp time.Time `json:"timestamp"`
		Payload   struct {
			Scores [2]int `json:"scores"`
			Winner string `json:"winner"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.EventID != id.String() || env.EventType != "DuelFinished" || env.DuelID != "duel-1" {
		t.Fatalf("envelope = %+v", env)
	}
	if !env.Timestamp.Equal(at) {
		t.Fatalf("timestamp = %v, want %v", env.Timestamp, at)
	}
	if env.Payload.Winner != "WA" || env.Payload.Scores != [2]int{50, 30} {
		t.Fatalf("payload = %+v", env.Payload)
	}
}

func TestObserveNeverBlocks(t *testing.T) {
	p := newPublisher(Config{BufferSize: 1})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			p.Observe(events.Lifecycle{DuelID: "duel-1", Type: events.LifecycleRoundResolved})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Observe blocked on a full buffer")
	}
	if got := len(p.eventsCh); got != 1 {
		t.Fatalf("buffered = %d, want 1", got)
	}
}

func TestObserveAfterClose(t *testing.T) {
	p := newPublisher(DefaultConfig())
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for range p.eventsCh {
		}
	}()

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	p.Observe(events.Lifecycle{DuelID: "duel-1", Type: events.LifecycleDuelStarted})
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
