// internal/infra/webpush/sender.go
package webpush

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meditation_notification_service/internal/domain/push"
)

// HTTPSender delivers push messages by POSTing the JSON payload to each
// subscription's registered endpoint. The per-request timeout bounds how long
// one hung endpoint can stall a dispatch cycle.
type HTTPSender struct {
	client *http.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, sub *push.Subscription, msg push.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request to %s failed: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("push endpoint %s returned %s", sub.Endpoint, resp.Status)
	}
	return nil
}
