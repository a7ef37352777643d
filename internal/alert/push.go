package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Pusher sends one push notification.
type Pusher interface {
	Push(ctx context.Context, identity string, msg Message) error
}

// pushRequest is the JSON body posted to the gateway.
type pushRequest struct {
	Identity string `json:"identity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Kind     string `json:"kind"`
	SentAt   string `json:"sent_at"`
}

// HTTPPusher posts alerts to a push gateway as JSON.
type HTTPPusher struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPPusher creates a pusher for the gateway at url. The token, when
// set, is sent as a bearer credential.
func NewHTTPPusher(url, token string, timeout time.Duration) *HTTPPusher {
	return &HTTPPusher{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// Push sends the alert. Any non-2xx status is a failure; the response body
// is otherwise ignored.
func (p *HTTPPusher) Push(ctx context.Context, identity string, msg Message) error {
	body, err := json.Marshal(pushRequest{
		Identity: identity,
		Title:    msg.Subject,
		Message:  msg.Body,
		Kind:     "intrusion",
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("%w: encoding request: %w", ErrPushFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for keep-alive

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: gateway returned %s", ErrPushFailed, resp.Status)
	}
	return nil
}
