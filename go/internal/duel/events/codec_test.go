package events

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecodeInbound(t *testing.T) {
	t.Run("init", func(t *testing.T) {
		msg, err := DecodeInbound([]byte(`{"type":"init","wallet":"W1","username":"alice"}`))
		if err != nil {
			t.Fatalf("DecodeInbound() error = %v", err)
		}
		got, ok := msg.(Init)
		if !ok {
			t.Fatalf("DecodeInbound() = %T, want Init", msg)
		}
		if got.Wallet != "W1" || got.Username != "alice" {
			t.Fatalf("init = %+v", got)
		}
	})

	t.Run("answer keeps raw choice", func(t *testing.T) {
		msg, err := DecodeInbound([]byte(`{"type":"answer","choice":"maybe"}`))
		if err != nil {
			t.Fatalf("DecodeInbound() error = %v", err)
		}
		answer, ok := msg.(Answer)
		if !ok {
			t.Fatalf("DecodeInbound() = %T, want Answer", msg)
		}
		if answer.Choice != "maybe" {
			t.Fatalf("choice = %q, want maybe", answer.Choice)
		}
	})

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{name: "not json", raw: `hello`, want: ErrMalformed},
		{name: "array", raw: `[1,2]`, want: ErrMalformed},
		{name: "missing type", raw: `{"wallet":"W1"}`, want: ErrMalformed},
		{name: "wrong field type", raw: `{"type":"answer","choice":5}`, want: ErrMalformed},
		{name: "unknown type", raw: `{"type":"bet","amount":3}`, want: ErrUnknownType},
		{name: "server type from client", raw: `{"type":"waiting"}`, want: ErrUnknownType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeInbound([]byte(tc.raw))
			if !errors.Is(err, tc.want) {
				t.Fatalf("DecodeInbound(%s) error = %v, want %v", tc.raw, err, tc.want)
			}
		})
	}
}

func TestEncodeTagsType(t *testing.T) {
	data, err := Encode(Waiting{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := string(data); got != `{"type":"waiting"}` {
		t.Fatalf("Encode(Waiting) = %s", got)
	}

	data, err = Encode(MatchFound{Opponent: Opponent{Wallet: "W2", Username: "bob"}, TotalRounds: 5})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.HasPrefix(string(data), `{"type":"match_found",`) {
		t.Fatalf("Encode(MatchFound) = %s, want type tag first", data)
	}
	var decoded struct {
		Type     string `json:"type"`
		Opponent struct {
			Wallet   string `json:"wallet"`
			Username string `json:"username"`
		} `json:"opponent"`
		TotalRounds int `json:"totalRounds"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "match_found" || decoded.Opponent.Wallet != "W2" || decoded.TotalRounds != 5 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestEncodeRoundResultMissingAnswerIsNull(t *testing.T) {
	data, err := Encode(RoundResult{
		CorrectAnswer:      ChoiceYes,
		YourAnswer:         ChoiceNone,
		OpponentAnswer:     ChoiceNo,
		TotalScore:         0,
		OpponentTotalScore: 10,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := decoded["yourAnswer"]; !ok || v != nil {
		t.Fatalf("yourAnswer = %v (present=%v), want null", v, ok)
	}
	if decoded["opponentAnswer"] != "no" || decoded["correctAnswer"] != "yes" {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestParseChoice(t *testing.T) {
	for _, s := range []string{"yes", "no"} {
		if c, ok := ParseChoice(s); !ok || string(c) != s {
			t.Fatalf("ParseChoice(%q) = %q, %v", s, c, ok)
		}
	}
	for _, s := range []string{"", "YES", "maybe"} {
		if c, ok := ParseChoice(s); ok || c != ChoiceNone {
			t.Fatalf("ParseChoice(%q) = %q, %v, want rejection", s, c, ok)
		}
	}
}
