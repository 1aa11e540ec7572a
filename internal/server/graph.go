package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// FollowGraph answers whether two fids mutually follow each other. The
// social graph lives outside this service; callers apply their own
// timeout policy through ctx.
type FollowGraph interface {
	IsMutual(ctx context.Context, viewerFid, otherFid int64) (bool, error)
}

type graphAPIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newGraphAPIClient(baseURL, apiKey string) *graphAPIClient {
	return &graphAPIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type mutualResponse struct {
	Mutual bool `json:"mutual"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *graphAPIClient) IsMutual(ctx context.Context, viewerFid, otherFid int64) (bool, error) {
	if viewerFid == otherFid {
		return false, nil
	}
	query := url.Values{}
	query.Set("viewer", strconv.FormatInt(viewerFid, 10))
	query.Set("target", strconv.FormatInt(otherFid, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/follows/mutual?"+query.Encode(), nil)
	if err != nil {
		return false, err
	}
	if g.apiKey != "" {
		req.Header.Set("X-Api-Key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	var payload mutualResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, err
	}
	if payload.Error != nil {
		return false, fmt.Errorf("graph api: %s", payload.Error.Message)
	}
	return payload.Mutual, nil
}

// staticGraph is an in-process graph used when no graph API is
// configured, and by tests.
type staticGraph struct {
	mu      sync.RWMutex
	mutuals map[int64]map[int64]bool
}

func newStaticGraph() *staticGraph {
	return &staticGraph{mutuals: make(map[int64]map[int64]bool)}
}

func (g *staticGraph) AddMutual(a, b int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutuals[a] == nil {
		g.mutuals[a] = make(map[int64]bool)
	}
	if g.mutuals[b] == nil {
		g.mutuals[b] = make(map[int64]bool)
	}
	g.mutuals[a][b] = true
	g.mutuals[b][a] = true
}

func (g *staticGraph) IsMutual(_ context.Context, viewerFid, otherFid int64) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mutuals[viewerFid][otherFid], nil
}
