package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for frames that are not a JSON object with a type tag
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for frames whose type tag is not a known inbound message
	ErrUnknownType = errors.New("unknown message type")
)

// DecodeInbound parses a client frame into one of the Inbound variants
func DecodeInbound(data []byte) (Inbound, error) {
	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch envelope.Type {
	case MessageTypeInit:
		var msg Init
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: init: %v", ErrMalformed, err)
		}
		return msg, nil

	case MessageTypeAnswer:
		var msg Answer
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: answer: %v", ErrMalformed, err)
		}
		return msg, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, envelope.Type)
	}
}

// Encode renders an outbound message as a single JSON object whose first key is "type"
func Encode(msg Outbound) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.Type(), err)
	}
	tag, err := json.Marshal(string(msg.Type()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal type tag: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(payload) + len(tag) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if body := bytes.TrimSpace(payload[1 : len(payload)-1]); len(body) > 0 {
		buf.WriteByte(',')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
