// Package client provides an HTTP client for the vote API with bounded
// retries and exponential backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voteboard/vote/domain/entities"
	transporthttp "voteboard/vote/transport/http"
)

// ErrExhausted reports that every retry attempt failed. The last underlying
// failure is attached to the returned error.
var ErrExhausted = errors.New("client: retries exhausted")

// Client wraps an http.Client with a retry policy. Requests are retried on
// connection errors and on a fixed set of retryable status codes, with
// exponential backoff between attempts. Only idempotent-safe methods plus
// POST are retried; everything else is sent exactly once.
//
// The zero value is not usable. Use New.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger

	maxStatusRetries  int
	maxConnectRetries int
	backoffFactor     time.Duration

	retryStatuses map[int]struct{}
	retryMethods  map[string]struct{}

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option mutates a Client during New.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the structured logger used for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxRetries bounds both the status-based and connection-based retry
// budgets.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxStatusRetries = n
			c.maxConnectRetries = n
		}
	}
}

// WithBackoffFactor sets the base unit of the exponential backoff. The wait
// before retry n (1-based) is factor * 2^(n-1).
func WithBackoffFactor(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoffFactor = d
		}
	}
}

// New builds a Client with the default retry policy: up to 10 retries for
// retryable statuses (429, 500, 502, 503, 504), up to 10 retries for
// connection errors, and a 300ms backoff factor.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:        &http.Client{Timeout: 30 * time.Second},
		logger:            slog.Default(),
		maxStatusRetries:  10,
		maxConnectRetries: 10,
		backoffFactor:     300 * time.Millisecond,
		retryStatuses: map[int]struct{}{
			http.StatusTooManyRequests:     {},
			http.StatusInternalServerError: {},
			http.StatusBadGateway:          {},
			http.StatusServiceUnavailable:  {},
			http.StatusGatewayTimeout:      {},
		},
		retryMethods: map[string]struct{}{
			http.MethodHead:    {},
			http.MethodGet:     {},
			http.MethodOptions: {},
			http.MethodPost:    {},
		},
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request, retrying per the client policy. The request body, if
// any, must be rebuildable: callers pass the raw bytes so each attempt gets a
// fresh reader. The response body of a failed retryable attempt is drained
// and closed before the next attempt. On success the caller owns resp.Body.
func (c *Client) Do(ctx context.Context, method, rawURL string, header http.Header, body []byte) (*http.Response, error) {
	_, retryable := c.retryMethods[method]

	statusLeft := c.maxStatusRetries
	connectLeft := c.maxConnectRetries

	var lastErr error
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader(body))
		if err != nil {
			return nil, fmt.Errorf("client: build request: %w", err)
		}
		for k, vs := range header {
			req.Header[k] = vs
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if !retryable {
				return nil, fmt.Errorf("client: %s %s: %w", method, rawURL, err)
			}
			if connectLeft <= 0 {
				return nil, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
			}
			connectLeft--
			c.logger.Warn("request failed, retrying",
				slog.String("event", "client.retry.connect"),
				slog.String("method", method),
				slog.String("url", rawURL),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if _, retryStatus := c.retryStatuses[resp.StatusCode]; !retryStatus || !retryable {
			return resp, nil
		}

		lastErr = fmt.Errorf("status %d from %s %s", resp.StatusCode, method, rawURL)
		drain(resp)
		if statusLeft <= 0 {
			return nil, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
		}
		statusLeft--
		c.logger.Warn("retryable status, retrying",
			slog.String("event", "client.retry.status"),
			slog.String("method", method),
			slog.String("url", rawURL),
			slog.Int("status", resp.StatusCode),
			slog.Int("attempt", attempt),
		)
		if err := c.backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

// SubmitVote posts a ballot to the vote API and returns the acknowledged
// record. baseURL is the service root, e.g. "http://localhost:8080".
func (c *Client) SubmitVote(ctx context.Context, baseURL, choice string) (entities.VoteRecord, error) {
	form := url.Values{}
	form.Set("vote", choice)

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Do(ctx, http.MethodPost, joinURL(baseURL, "/api/vote"), header, []byte(form.Encode()))
	if err != nil {
		return entities.VoteRecord{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entities.VoteRecord{}, decodeAPIError(resp)
	}

	var ack transporthttp.SubmitVoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return entities.VoteRecord{}, fmt.Errorf("client: decode submit response: %w", err)
	}
	return entities.VoteRecord{VoterID: ack.VoterID, Choice: ack.Choice}, nil
}

// Tally fetches the current per-choice counts.
func (c *Client) Tally(ctx context.Context, baseURL string) ([]entities.TallyRow, error) {
	resp, err := c.Do(ctx, http.MethodGet, joinURL(baseURL, "/api/vote"), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var rows []entities.TallyRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("client: decode tally response: %w", err)
	}
	return rows, nil
}

func (c *Client) backoff(ctx context.Context, attempt int) error {
	if c.backoffFactor <= 0 {
		return ctx.Err()
	}
	wait := c.backoffFactor * (1 << (attempt - 1))
	return c.sleep(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func joinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

func decodeAPIError(resp *http.Response) error {
	var apiErr transporthttp.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("client: unexpected status %d", resp.StatusCode)
	}
	return fmt.Errorf("client: %s: %s", apiErr.Code, apiErr.Message)
}
