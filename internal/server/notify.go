package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Notification struct {
	RecipientFid int64  `json:"recipient_fid"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	PollID       string `json:"poll_id,omitempty"`
}

// Notifier delivers a notification to a user. Delivery is best effort;
// the core ignores the result.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type webhookNotifier struct {
	url    string
	client *http.Client
}

func newWebhookNotifier(url string) *webhookNotifier {
	return &webhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *webhookNotifier) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify webhook returned status %d", resp.StatusCode)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, Notification) error { return nil }

// notify fires and forgets; failures only surface in the debug log.
func (s *Server) notify(n Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Send(ctx, n); err != nil {
			s.log.Debug("notification dropped", "recipient_fid", n.RecipientFid, "error", err)
		}
	}()
}
