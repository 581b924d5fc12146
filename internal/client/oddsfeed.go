package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scoreline/server/internal/metrics"
	"scoreline/server/internal/models"

	"github.com/rs/zerolog/log"
)

// OddsFeed is the odds feed client. The feed quotes pregame lines per
// bookmaker; one fetch returns every book's current line for a game day.
type OddsFeed struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{}
	maxRetries  int
	retryDelay  time.Duration
}

// NewOddsFeed creates a new odds feed client
func NewOddsFeed(baseURL, apiKey string, timeout time.Duration) *OddsFeed {
	rateLimiter := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		rateLimiter <- struct{}{}
	}

	return &OddsFeed{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *OddsFeed) get(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying odds request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retryable, err := c.doRequest(ctx, url, path)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *OddsFeed) doRequest(ctx context.Context, url, endpoint string) (body []byte, retryable bool, err error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "scoreline/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFeedCall(endpoint, "error", time.Since(start).Seconds())
		return nil, true, fmt.Errorf("odds request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	duration := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordFeedCall(endpoint, "error", duration)
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		metrics.RecordFeedCall(endpoint, "success", duration)
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		metrics.RecordFeedCall(endpoint, "retryable", duration)
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Received retryable error, will retry")
		return nil, true, fmt.Errorf("odds feed returned retryable status %d: %s", resp.StatusCode, string(body))

	case http.StatusUnauthorized, http.StatusForbidden:
		metrics.RecordFeedCall(endpoint, "auth_error", duration)
		return nil, false, fmt.Errorf("odds feed authentication failed (status %d): %s", resp.StatusCode, string(body))

	default:
		metrics.RecordFeedCall(endpoint, "error", duration)
		return nil, false, fmt.Errorf("odds feed returned status %d: %s", resp.StatusCode, string(body))
	}
}

// FetchGameOdds fetches current pregame quotes for every game on a day
func (c *OddsFeed) FetchGameOdds(ctx context.Context, sport models.Sport, day time.Time) ([]models.QuoteInput, error) {
	path := fmt.Sprintf("%s/odds/json/GameOddsByDate/%s", sport, day.Format("2006-Jan-02"))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game odds: %w", err)
	}

	var quotes []models.QuoteInput
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game odds: %w", err)
	}

	return quotes, nil
}

// FetchClosingLines fetches the closing spread and total for completed games
// on a day. The feed only exposes these after the games go final.
func (c *OddsFeed) FetchClosingLines(ctx context.Context, sport models.Sport, day time.Time) ([]models.QuoteInput, error) {
	path := fmt.Sprintf("%s/odds/json/ClosingLinesByDate/%s", sport, day.Format("2006-Jan-02"))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch closing lines: %w", err)
	}

	var quotes []models.QuoteInput
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal closing lines: %w", err)
	}

	return quotes, nil
}
