package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/studypath/internal/pkg/httpx"
)

// WebhookSink POSTs {event, payload} as JSON. A retryable failure is
// retried once.
type WebhookSink struct {
	url        string
	httpClient *http.Client
	retryBase  time.Duration
}

func NewWebhookSink(url string, hc *http.Client) *WebhookSink {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &WebhookSink{url: strings.TrimSpace(url), httpClient: hc, retryBase: 300 * time.Millisecond}
}

func (w *WebhookSink) Name() string { return "webhook" }

func (w *WebhookSink) Deliver(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	resp, err := w.post(ctx, body)
	if err == nil || !httpx.IsRetryableError(err) {
		return err
	}
	if sleepErr := httpx.Sleep(ctx, httpx.RetryAfterDuration(resp, httpx.JitterSleep(w.retryBase), 2*time.Second)); sleepErr != nil {
		return err
	}
	_, err = w.post(ctx, body)
	return err
}

func (w *WebhookSink) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook post: %w", err)
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &httpx.StatusError{Provider: "webhook", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}
