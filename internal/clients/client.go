package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Non-2xx answer from the hook
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Posts JSON documents to an outbound hook URL. Transport failures, 429 and
// 5xx answers are retried with exponential backoff, other statuses are not.
type HookClient struct {
	URL      string
	Headers  map[string]string
	Attempts int
	Backoff  time.Duration

	http *http.Client
}

func NewHookClient(url string, timeout time.Duration) *HookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HookClient{
		URL:      url,
		Headers:  map[string]string{},
		Attempts: 3,
		Backoff:  200 * time.Millisecond,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *HookClient) PostJSON(ctx context.Context, payload any) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	attempts := max(c.Attempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.post(ctx, blob)
		if lastErr == nil || !retryable(lastErr) || attempt == attempts {
			break
		}

		wait := c.Backoff << (attempt - 1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

func (c *HookClient) post(ctx context.Context, blob []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
