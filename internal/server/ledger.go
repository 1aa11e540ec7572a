package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// ChainAnchor submits a hash of poll results to an external ledger and
// returns the transaction reference. Retry and confirmation semantics
// belong to the relay, not this service.
type ChainAnchor interface {
	Submit(ctx context.Context, pollID, resultsHash string) (string, error)
}

type relayAnchor struct {
	url      string
	contract string
	client   *http.Client
}

func newRelayAnchor(url, contract string) *relayAnchor {
	return &relayAnchor{
		url:      url,
		contract: contract,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type anchorRequest struct {
	Contract    string `json:"contract"`
	PollID      string `json:"poll_id"`
	ResultsHash string `json:"results_hash"`
}

type anchorResponse struct {
	TxHash string `json:"tx_hash"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *relayAnchor) Submit(ctx context.Context, pollID, resultsHash string) (string, error) {
	body, err := json.Marshal(anchorRequest{
		Contract:    a.contract,
		PollID:      pollID,
		ResultsHash: resultsHash,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("ledger relay returned status %d", resp.StatusCode)
	}

	var payload anchorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Error != nil {
		return "", fmt.Errorf("ledger relay: %s", payload.Error.Message)
	}
	if payload.TxHash == "" {
		return "", fmt.Errorf("ledger relay returned no tx hash")
	}
	return payload.TxHash, nil
}

// resultsHash fingerprints a poll's tallies: sha256 over the poll id
// and its option counts in sorted option order, so the same results
// always hash the same.
func resultsHash(pollID string, counts map[string]int) string {
	optionIDs := make([]string, 0, len(counts))
	for optionID := range counts {
		optionIDs = append(optionIDs, optionID)
	}
	sort.Strings(optionIDs)

	h := sha256.New()
	fmt.Fprintf(h, "%s\n", pollID)
	for _, optionID := range optionIDs {
		fmt.Fprintf(h, "%s:%d\n", optionID, counts[optionID])
	}
	return hex.EncodeToString(h.Sum(nil))
}
