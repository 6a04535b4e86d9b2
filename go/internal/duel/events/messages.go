package events

import (
	"encoding/json"
)

// MessageType is the value of the "type" tag carried by every frame
type MessageType string

const (
	// Client -> server
	MessageTypeInit   MessageType = "init"
	MessageTypeAnswer MessageType = "answer"

	// Server -> client
	MessageTypeWaiting      MessageType = "waiting"
	MessageTypeMatchFound   MessageType = "match_found"
	MessageTypeRoundStart   MessageType = "round_start"
	MessageTypeRoundResult  MessageType = "round_result"
	MessageTypeDuelFinished MessageType = "duel_finished"
	MessageTypeOpponentLeft MessageType = "opponent_left"
	MessageTypeError        MessageType = "error"
)

// WinnerDraw is reported as the winner when both scores are equal
const WinnerDraw = "draw"

// Choice is a participant's answer to a yes/no question
type Choice string

const (
	ChoiceNone Choice = ""
	ChoiceYes  Choice = "yes"
	ChoiceNo   Choice = "no"
)

// ParseChoice accepts only the two valid answers
func ParseChoice(s string) (Choice, bool) {
	switch Choice(s) {
	case ChoiceYes, ChoiceNo:
		return Choice(s), true
	default:
		return ChoiceNone, false
	}
}

// MarshalJSON encodes a missing answer as null
func (c Choice) MarshalJSON() ([]byte, error) {
	if c == ChoiceNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// Inbound is a message sent by a client. The set of implementations is closed.
type Inbound interface {
	Type() MessageType
	inbound()
}

// Init asks to enter matchmaking
type Init struct {
	Wallet   string `json:"wallet"`
	Username string `json:"username"`
}

// Answer submits a choice for the round currently bound to the connection.
// Choice is kept raw so that invalid values can be ignored by the engine.
type Answer struct {
	Choice string `json:"choice"`
}

func (Init) Type() MessageType   { return MessageTypeInit }
func (Answer) Type() MessageType { return MessageTypeAnswer }

func (Init) inbound()   {}
func (Answer) inbound() {}

// Outbound is a message pushed to a client. The set of implementations is closed.
type Outbound interface {
	Type() MessageType
	outbound()
}

// Opponent identifies the other participant of a duel
type Opponent struct {
	Wallet   string `json:"wallet"`
	Username string `json:"username"`
}

// QuestionView is the part of a question that is shown to players
type QuestionView struct {
	Text    string  `json:"text"`
	YesProb float64 `json:"yesProb"`
	NoProb  float64 `json:"noProb"`
}

// Waiting acknowledges that the connection is queued
type Waiting struct{}

// MatchFound is sent to both sides once a pairing happened
type MatchFound struct {
	Opponent    Opponent `json:"opponent"`
	TotalRounds int      `json:"totalRounds"`
}

// RoundStart announces a new question
type RoundStart struct {
	Round       int          `json:"round"`
	TotalRounds int          `json:"totalRounds"`
	Question    QuestionView `json:"question"`
	RoundTime   int          `json:"roundTime"` // seconds
}

// RoundResult is sent to each side with its own perspective of the round
type RoundResult struct {
	CorrectAnswer      Choice `json:"correctAnswer"`
	YourAnswer         Choice `json:"yourAnswer"`
	OpponentAnswer     Choice `json:"opponentAnswer"`
	RoundDelta         int    `json:"roundDelta"`
	TotalScore         int    `json:"totalScore"`
	OpponentTotalScore int    `json:"opponentTotalScore"`
}

// DuelFinished closes a duel that played all of its rounds
type DuelFinished struct {
	YourScore     int    `json:"yourScore"`
	OpponentScore int    `json:"opponentScore"`
	Winner        string `json:"winner"` // wallet id or WinnerDraw
}

// OpponentLeft tells the survivor that the duel was abandoned
type OpponentLeft struct{}

// Error reports a validation failure
type Error struct {
	Error string `json:"error"`
}

func (Waiting) Type() MessageType      { return MessageTypeWaiting }
func (MatchFound) Type() MessageType   { return MessageTypeMatchFound }
func (RoundStart) Type() MessageType   { return MessageTypeRoundStart }
func (RoundResult) Type() MessageType  { return MessageTypeRoundResult }
func (DuelFinished) Type() MessageType { return MessageTypeDuelFinished }
func (OpponentLeft) Type() MessageType { return MessageTypeOpponentLeft }
func (Error) Type() MessageType        { return MessageTypeError }

func (Waiting) outbound()      {}
func (MatchFound) outbound()   {}
func (RoundStart) outbound()   {}
func (RoundResult) outbound()  {}
func (DuelFinished) outbound() {}
func (OpponentLeft) outbound() {}
func (Error) outbound()        {}
