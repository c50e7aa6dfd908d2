package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Pusher delivers one payload to one device token. Implementations decide
// the transport; send errors for a token mark it for pruning.
type Pusher interface {
	Push(ctx context.Context, token string, payload Payload) error
}

// NoopPusher drops payloads; used when no push endpoint is configured and
// in tests.
type NoopPusher struct{}

func (NoopPusher) Push(context.Context, string, Payload) error { return nil }

// HTTPPusher posts payloads to a push-relay endpoint, one request per
// token. A non-2xx response is a send failure for that token.
type HTTPPusher struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPPusher(endpoint string) *HTTPPusher {
	return &HTTPPusher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPPusher) Push(ctx context.Context, token string, payload Payload) error {
	body, err := json.Marshal(struct {
		Token   string  `json:"token"`
		Payload Payload `json:"payload"`
	}{Token: token, Payload: payload})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push relay returned %d", resp.StatusCode)
	}
	return nil
}
