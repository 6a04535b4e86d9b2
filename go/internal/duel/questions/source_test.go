package questions

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcdev12/predictduel/go/clients/gamma_client"
	"github.com/mcdev12/predictduel/go/internal/duel/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestResolvedSide(t *testing.T) {
	cases := []struct {
		yes, no float64
		want    events.Choice
	}{
		{0.7, 0.3, events.ChoiceYes},
		{0.2, 0.8, events.ChoiceNo},
		{0.5, 0.5, events.ChoiceYes},
		{0, 0, events.ChoiceYes},
	}
	for _, tc := range cases {
		q := Question{YesProb: tc.yes, NoProb: tc.no}
		if got := q.ResolvedSide(); got != tc.want {
			t.Fatalf("ResolvedSide(%v, %v) = %q, want %q", tc.yes, tc.no, got, tc.want)
		}
	}
}

func TestHTTPSource(t *testing.T) {
	t.Run("decodes collaborator response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":512,"question":"Will it snow?","yesProb":0.3,"noProb":0.7}`))
		}))
		defer srv.Close()

		q, err := NewHTTPSource(srv.URL + "/api/polymarket-question").FetchQuestion(context.Background())
		if err != nil {
			t.Fatalf("FetchQuestion() error = %v", err)
		}
		if q.ID != "512" || q.Text != "Will it snow?" || q.ResolvedSide() != events.ChoiceNo {
			t.Fatalf("question = %+v", q)
		}
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"Failed"}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL).FetchQuestion(context.Background())
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Fatalf("FetchQuestion() error = %v, want ErrSourceUnavailable", err)
		}
	})

	t.Run("missing text is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"1","yesProb":0.3,"noProb":0.7}`))
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL).FetchQuestion(context.Background())
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Fatalf("FetchQuestion() error = %v, want ErrSourceUnavailable", err)
		}
	})
}

func TestGammaSource(t *testing.T) {
	t.Run("filters non yes/no markets", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"id":"a","question":"Who wins?","outcomes":["Red","Blue"],"outcomePrices":["0.5","0.5"]},
				{"id":"b","slug":"will-it-rain","outcomes":"[\"No\",\"Yes\"]","outcomePrices":"[\"0.9\",\"0.1\"]"}
			]`))
		}))
		defer srv.Close()

		src := NewGammaSource(gamma_client.NewGammaClient(srv.URL), 10)
		src.pick = func(n int) int {
			if n != 1 {
				t.Errorf("pick called with %d candidates, want 1", n)
			}
			return 0
		}

		q, err := src.FetchQuestion(context.Background())
		if err != nil {
			t.Fatalf("FetchQuestion() error = %v", err)
		}
		if q.ID != "b" || q.Text != "will it rain" {
			t.Fatalf("question = %+v", q)
		}
		if q.YesProb != 0.1 || q.NoProb != 0.9 || q.ResolvedSide() != events.ChoiceNo {
			t.Fatalf("question probabilities = %+v", q)
		}
	})

	t.Run("no markets is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		_, err := NewGammaSource(gamma_client.NewGammaClient(srv.URL), 0).FetchQuestion(context.Background())
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Fatalf("FetchQuestion() error = %v, want ErrSourceUnavailable", err)
		}
	})
}

func TestStaticSourceRotates(t *testing.T) {
	src := NewStaticSource(Question{ID: "1", Text: "a"}, Question{ID: "2", Text: "b"})
	var ids []string
	for i := 0; i < 3; i++ {
		q, err := src.FetchQuestion(context.Background())
		if err != nil {
			t.Fatalf("FetchQuestion() error = %v", err)
		}
		ids = append(ids, q.ID)
	}
	if ids[0] != "1" || ids[1] != "2" || ids[2] != "1" {
		t.Fatalf("ids = %v", ids)
	}

	if _, err := NewStaticSource().FetchQuestion(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("empty source error = %v", err)
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestFetchFailuresAreLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/not-json":
			w.Write([]byte(`<html>`))
		default:
			http.Error(w, "down", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"http error", NewHTTPSource(srv.URL + "/question"), "question fetch failed"},
		{"http bad body", NewHTTPSource(srv.URL + "/not-json"), "question response is not JSON"},
		{"gamma error", NewGammaSource(gamma_client.NewGammaClient(srv.URL), 5), "gamma market fetch failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			if _, err := tt.src.FetchQuestion(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
				t.Fatalf("FetchQuestion() error = %v, want ErrSourceUnavailable", err)
			}
			if out := buf.String(); !strings.Contains(out, tt.want) || !strings.Contains(out, `"level":"debug"`) {
				t.Fatalf("log = %q, want debug line %q", out, tt.want)
			}
		})
	}
}
