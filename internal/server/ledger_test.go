package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResultsHashDeterministic(t *testing.T) {
	counts := map[string]int{"option-2": 3, "option-1": 5}
	first := resultsHash("poll-1", counts)
	second := resultsHash("poll-1", map[string]int{"option-1": 5, "option-2": 3})
	if first != second {
		t.Fatalf("hash depends on map order: %s vs %s", first, second)
	}
	if first == resultsHash("poll-2", counts) {
		t.Fatal("hash ignores poll id")
	}
	if first == resultsHash("poll-1", map[string]int{"option-1": 6, "option-2": 3}) {
		t.Fatal("hash ignores tallies")
	}
}

func TestRelayAnchorSubmit(t *testing.T) {
	var got anchorRequest
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode relay request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"tx_hash": "0x123"})
	}))
	t.Cleanup(relay.Close)

	anchor := newRelayAnchor(relay.URL, "0xcontract")
	tx, err := anchor.Submit(context.Background(), "poll-1", "deadbeef")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if tx != "0x123" {
		t.Fatalf("unexpected tx: %s", tx)
	}
	if got.PollID != "poll-1" || got.ResultsHash != "deadbeef" || got.Contract != "0xcontract" {
		t.Fatalf("unexpected relay request: %+v", got)
	}
}

func TestRelayAnchorSubmitFailure(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(relay.Close)

	anchor := newRelayAnchor(relay.URL, "")
	if _, err := anchor.Submit(context.Background(), "poll-1", "deadbeef"); err == nil {
		t.Fatal("expected error on relay failure")
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	t.Cleanup(empty.Close)

	anchor = newRelayAnchor(empty.URL, "")
	if _, err := anchor.Submit(context.Background(), "poll-1", "deadbeef"); err == nil {
		t.Fatal("expected error on missing tx hash")
	}
}
