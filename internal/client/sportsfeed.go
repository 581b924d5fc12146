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

// SportsFeed is the stats feed client. It serves both leagues; the sport
// argument selects the base URL.
type SportsFeed struct {
	baseURLs    map[models.Sport]string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewSportsFeed creates a new stats feed client
func NewSportsFeed(nbaBaseURL, nflBaseURL, apiKey string, timeout time.Duration) *SportsFeed {
	// Create rate limiter (max 20 concurrent requests, burst of 20)
	rateLimiter := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		rateLimiter <- struct{}{}
	}

	return &SportsFeed{
		baseURLs: map[models.Sport]string{
			models.SportNBA: nbaBaseURL,
			models.SportNFL: nflBaseURL,
		},
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

// get performs a GET request against the feed with retry logic and rate limiting
func (c *SportsFeed) get(ctx context.Context, sport models.Sport, path string) ([]byte, error) {
	base, ok := c.baseURLs[sport]
	if !ok {
		return nil, fmt.Errorf("no base URL for sport %q", sport)
	}
	url := fmt.Sprintf("%s/%s", base, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying feed request after backoff")

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

// doRequest performs one attempt, holding a rate limiter token for its duration
func (c *SportsFeed) doRequest(ctx context.Context, url, endpoint string) (body []byte, retryable bool, err error) {
	// Rate limiting: acquire semaphore
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
		// Retry on network errors
		return nil, true, fmt.Errorf("feed request failed: %w", err)
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
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("Feed request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		metrics.RecordFeedCall(endpoint, "retryable", duration)
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Received retryable error, will retry")
		return nil, true, fmt.Errorf("feed returned retryable status %d: %s", resp.StatusCode, string(body))

	case http.StatusUnauthorized, http.StatusForbidden:
		// Don't retry auth errors
		metrics.RecordFeedCall(endpoint, "auth_error", duration)
		return nil, false, fmt.Errorf("feed authentication failed (status %d): %s", resp.StatusCode, string(body))

	default:
		metrics.RecordFeedCall(endpoint, "error", duration)
		return nil, false, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}
}

// FetchCurrentSeason fetches the current season year for a sport
func (c *SportsFeed) FetchCurrentSeason(ctx context.Context, sport models.Sport) (int, error) {
	body, err := c.get(ctx, sport, "scores/json/CurrentSeason")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch current season: %w", err)
	}

	var season int
	if err := json.Unmarshal(body, &season); err != nil {
		return 0, fmt.Errorf("failed to unmarshal season: %w", err)
	}

	return season, nil
}

// FetchTeams fetches all teams with their season scoring averages
func (c *SportsFeed) FetchTeams(ctx context.Context, sport models.Sport, season int) ([]models.TeamInput, error) {
	path := fmt.Sprintf("scores/json/TeamSeasonStats/%d", season)
	body, err := c.get(ctx, sport, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var teams []models.TeamInput
	if err := json.Unmarshal(body, &teams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal teams: %w", err)
	}

	for i := range teams {
		teams[i].Sport = string(sport)
	}

	return teams, nil
}

// FetchSchedule fetches the game schedule for a season
func (c *SportsFeed) FetchSchedule(ctx context.Context, sport models.Sport, season int) ([]models.GameInput, error) {
	path := fmt.Sprintf("scores/json/Games/%d", season)
	body, err := c.get(ctx, sport, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	var games []models.GameInput
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}

	for i := range games {
		games[i].Sport = string(sport)
		games[i].Season = season
	}

	return games, nil
}

// FetchScoresByDate fetches scores for a calendar day (format 2026-JAN-15)
func (c *SportsFeed) FetchScoresByDate(ctx context.Context, sport models.Sport, day time.Time) ([]models.GameInput, error) {
	path := fmt.Sprintf("scores/json/GamesByDate/%s", day.Format("2006-Jan-02"))
	body, err := c.get(ctx, sport, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scores by date: %w", err)
	}

	var games []models.GameInput
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}

	for i := range games {
		games[i].Sport = string(sport)
	}

	return games, nil
}

// FetchInjuries fetches the league-wide injury report
func (c *SportsFeed) FetchInjuries(ctx context.Context, sport models.Sport) ([]models.InjuryInput, error) {
	body, err := c.get(ctx, sport, "scores/json/Injuries")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch injuries: %w", err)
	}

	var injuries []models.InjuryInput
	if err := json.Unmarshal(body, &injuries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal injuries: %w", err)
	}

	return injuries, nil
}

// FetchPlayer fetches a single player profile
func (c *SportsFeed) FetchPlayer(ctx context.Context, sport models.Sport, playerID int) (*models.Player, error) {
	path := fmt.Sprintf("scores/json/Player/%d", playerID)
	body, err := c.get(ctx, sport, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}

	var player models.Player
	if err := json.Unmarshal(body, &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &player, nil
}
