package events

import (
	"time"
)

// Lifecycle payloads shared between the engine and the event bus

// LifecycleType names a duel lifecycle event on the bus
type LifecycleType string

const (
	LifecycleDuelStarted   LifecycleType = "DuelStarted"
	LifecycleRoundResolved LifecycleType = "RoundResolved"
	LifecycleDuelFinished  LifecycleType = "DuelFinished"
	LifecycleDuelAbandoned LifecycleType = "DuelAbandoned"
)

// Lifecycle is a state transition of one duel
type Lifecycle struct {
	DuelID    string
	Type      LifecycleType
	Timestamp time.Time
	Payload   interface{}
}

// Participant is a wallet seated in a slot
type Participant struct {
	Slot     int    `json:"slot"`
	Wallet   string `json:"wallet"`
	Username string `json:"username"`
}

// DuelStartedPayload is the payload for a DuelStarted event
type DuelStartedPayload struct {
	DuelID       string        `json:"duel_id"`
	Participants []Participant `json:"participants"`
	TotalRounds  int           `json:"total_rounds"`
	StartedAt    time.Time     `json:"started_at"`
}

// RoundResolvedPayload is the payload for a RoundResolved event
type RoundResolvedPayload struct {
	DuelID        string    `json:"duel_id"`
	Round         int       `json:"round"`
	QuestionID    string    `json:"question_id"`
	CorrectAnswer Choice    `json:"correct_answer"`
	Answers       [2]Choice `json:"answers"`
	Deltas        [2]int    `json:"deltas"`
	Scores        [2]int    `json:"scores"`
	TimedOut      bool      `json:"timed_out"`
	ResolvedAt    time.Time `json:"resolved_at"`
}

// DuelFinishedPayload is the payload for a DuelFinished event
type DuelFinishedPayload struct {
	DuelID     string    `json:"duel_id"`
	Scores     [2]int    `json:"scores"`
	Winner     string    `json:"winner"`
	FinishedAt time.Time `json:"finished_at"`
}

// DuelAbandonedPayload is the payload for a DuelAbandoned event
type DuelAbandonedPayload struct {
	DuelID      string    `json:"duel_id"`
	Round       int       `json:"round"`
	Reason      string    `json:"reason"`
	LeaverSlot  int       `json:"leaver_slot"` // -1 when nobody left
	AbandonedAt time.Time `json:"abandoned_at"`
}
