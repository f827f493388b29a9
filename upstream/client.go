// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upstream

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
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"

	"github.com/danielhkuo/pollview/metrics"
	"github.com/danielhkuo/pollview/models"
)

var (
	ErrPollNotFound        = errors.New("poll not found")
	ErrInvalidVote         = errors.New("invalid vote")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// errAborted marks requests cut short by the caller's context. They say
	// nothing about upstream health.
	errAborted = errors.New("upstream request aborted")
)

const (
	operationResults = "results"
	operationVote    = "vote"

	maxErrorBody = 4 << 10
)

// Client talks to the poll API that owns polls and votes
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	clock   clockwork.Clock
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(cl *Client) {
		cl.clock = clock
	}
}

// WithBreakerSettings replaces the circuit breaker configuration. Name,
// IsSuccessful and OnStateChange are always set by the client.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(cl *Client) {
		cl.breaker = newBreaker(st)
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse upstream URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(gobreaker.Settings{
			MaxRequests: 1,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}

	return c, nil
}

func newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker {
	st.Name = "upstream"
	st.IsSuccessful = func(err error) bool {
		return err == nil ||
			errors.Is(err, ErrPollNotFound) ||
			errors.Is(err, ErrInvalidVote) ||
			errors.Is(err, errAborted)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		slog.Warn("circuit breaker state changed",
			"component", name,
			"from", from.String(),
			"to", to.String(),
		)
		metrics.CircuitBreakerState.Set(stateToFloat(to))
	}
	return gobreaker.NewCircuitBreaker(st)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// State exposes the breaker state for health reporting
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// FetchResults returns the poll together with its raw tally and reported total
func (c *Client) FetchResults(ctx context.Context, pollID string) (models.PollResults, error) {
	var res models.PollResults

	endpoint := fmt.Sprintf("%s/polls/%s/results", c.baseURL, url.PathEscape(pollID))
	err := c.do(ctx, operationResults, http.MethodGet, endpoint, nil, &res)
	if err != nil {
		return models.PollResults{}, err
	}
	if res.Votes == nil {
		res.Votes = models.VoteTally{}
	}

	return res, nil
}

// SubmitVote forwards a vote body to the poll API byte for byte
func (c *Client) SubmitVote(ctx context.Context, pollID string, body json.RawMessage) (models.VoteResponse, error) {
	var resp models.VoteResponse
	endpoint := fmt.Sprintf("%s/polls/%s/vote", c.baseURL, url.PathEscape(pollID))
	if err := c.do(ctx, operationVote, http.MethodPost, endpoint, body, &resp); err != nil {
		return models.VoteResponse{}, err
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, body []byte, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, operation, method, endpoint, body, out)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, operation, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := c.clock.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(operation, "error").Observe(c.clock.Since(start).Seconds())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", errAborted, ctxErr)
		}
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestDuration.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Observe(c.clock.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrPollNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrInvalidVote, readMessage(resp.Body))
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("unexpected upstream status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid response body: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// readMessage extracts a human readable reason from an upstream error body
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return "rejected by upstream"
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}
