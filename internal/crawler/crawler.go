// Package crawler reads the statistics tables published on the Vitibrasil
// site.
package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
	DefaultBackoff  = 500 * time.Millisecond

	maxBody = 8 << 20
)

// Client fetches site pages with a bounded retry policy.
type Client struct {
	HTTP      *http.Client
	Attempts  int
	Backoff   time.Duration // doubled after each failed attempt
	UserAgent string
}

func NewClient(timeout time.Duration, attempts int, backoff time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		Attempts:  attempts,
		Backoff:   backoff,
		UserAgent: "Mozilla/5.0",
	}
}

// Fetch returns the body of url. Transport errors and 5xx answers are retried
// up to Attempts times; 4xx answers fail immediately.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var (
		lastErr error
		wait    = c.Backoff
	)

	for attempt := 1; attempt <= c.Attempts; attempt++ {
		body, retry, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || attempt == c.Attempts {
			break
		}

		slog.Debug("site fetch failed, retrying",
			"url", url,
			"attempt", attempt,
			"backoff", wait,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, &Error{Kind: KindNetwork, URL: url, Err: ctx.Err()}
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, &Error{Kind: KindNetwork, URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode >= 500, &Error{Kind: KindNetwork, URL: url, Status: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, true, &Error{Kind: KindNetwork, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	// Uma página truncada viraria uma tabela parcial.
	if len(b) > maxBody {
		return nil, false, &Error{Kind: KindNetwork, URL: url, Err: fmt.Errorf("body larger than %d bytes", maxBody)}
	}
	return b, false, nil
}
