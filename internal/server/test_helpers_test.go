package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pollcast/internal/config"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(nil, config.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func createPollViaAPI(t *testing.T, ts *httptest.Server, question string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/polls", map[string]any{
		"creator_fid":      10,
		"creator_username": "ada",
		"question":         question,
		"options": []map[string]string{
			{"text": "A"},
			{"text": "B"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create poll returned %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	id, _ := body["poll_id"].(string)
	if id == "" {
		t.Fatalf("no poll_id in response: %v", body)
	}
	return id
}
