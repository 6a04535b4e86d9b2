package gamma_client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStringListAcceptsBothShapes(t *testing.T) {
	var m struct {
		A StringList `json:"a"`
		B StringList `json:"b"`
		C StringList `json:"c"`
	}
	raw := `{"a":["Yes","No"],"b":"[\"0.37\", \"0.63\"]","c":[0.5,0.5]}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(m.A) != 2 || m.A[1] != "No" {
		t.Fatalf("A = %v", m.A)
	}
	if m.B.Float(0) != 0.37 || m.B.Float(1) != 0.63 {
		t.Fatalf("B = %v", m.B)
	}
	if m.C.Float(1) != 0.5 {
		t.Fatalf("C = %v", m.C)
	}
	if m.C.Float(5) != 0 {
		t.Fatalf("out of range Float should be 0")
	}
}

func TestMarketHelpers(t *testing.T) {
	m := Market{
		Outcomes:      StringList{"No", "Yes"},
		OutcomePrices: StringList{"0.8", "0.2"},
		Slug:          "will-it-rain",
	}
	if !m.IsYesNo() {
		t.Fatalf("IsYesNo() = false")
	}
	yes, no := m.Prices()
	if yes != 0.2 || no != 0.8 {
		t.Fatalf("Prices() = %v, %v; want prices matched by label", yes, no)
	}
	if got := m.DisplayText(); got != "will it rain" {
		t.Fatalf("DisplayText() = %q", got)
	}
	if got := (Market{}).DisplayText(); got != "Unknown question" {
		t.Fatalf("DisplayText() = %q", got)
	}
	if (Market{Outcomes: StringList{"Trump", "Harris"}}).IsYesNo() {
		t.Fatalf("non yes/no market reported as yes/no")
	}
}

func TestGetActiveMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != MarketsEndpoint {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("active") != "true" || r.URL.Query().Get("limit") != "25" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":"1","question":"Q?","outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[\"0.6\",\"0.4\"]"}]`))
	}))
	defer srv.Close()

	markets, err := NewGammaClient(srv.URL).GetActiveMarkets(context.Background(), 25)
	if err != nil {
		t.Fatalf("GetActiveMarkets() error = %v", err)
	}
	if len(markets) != 1 || markets[0].ID != "1" || !markets[0].IsYesNo() {
		t.Fatalf("markets = %+v", markets)
	}
}
