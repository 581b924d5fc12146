package client

import (
	"context"
	"sync"
	"time"

	"scoreline/server/internal/models"
)

// InjuryReport adapts the stats feed's league-wide injury endpoint to per-team
// lookups. The feed returns every injured player in one call, so the report is
// cached in memory and filtered per team.
type InjuryReport struct {
	feed *SportsFeed
	ttl  time.Duration

	mu      sync.Mutex
	reports map[models.Sport]injuryCacheEntry
}

type injuryCacheEntry struct {
	byTeam    map[int][]models.InjuryEntry
	fetchedAt time.Time
}

// NewInjuryReport creates an injury report source backed by the stats feed
func NewInjuryReport(feed *SportsFeed, ttl time.Duration) *InjuryReport {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &InjuryReport{
		feed:    feed,
		ttl:     ttl,
		reports: make(map[models.Sport]injuryCacheEntry),
	}
}

// InjuriesForTeam returns the current injury report for one team. A team with
// no injured players returns (nil, nil).
func (r *InjuryReport) InjuriesForTeam(ctx context.Context, sport models.Sport, teamID int) ([]models.InjuryEntry, error) {
	r.mu.Lock()
	entry, ok := r.reports[sport]
	r.mu.Unlock()

	if !ok || time.Since(entry.fetchedAt) > r.ttl {
		fresh, err := r.refresh(ctx, sport)
		if err != nil {
			// Serve a stale report over failing the snapshot build
			if ok {
				return entry.byTeam[teamID], nil
			}
			return nil, err
		}
		entry = fresh
	}

	return entry.byTeam[teamID], nil
}

func (r *InjuryReport) refresh(ctx context.Context, sport models.Sport) (injuryCacheEntry, error) {
	inputs, err := r.feed.FetchInjuries(ctx, sport)
	if err != nil {
		return injuryCacheEntry{}, err
	}

	byTeam := make(map[int][]models.InjuryEntry)
	for i := range inputs {
		byTeam[inputs[i].TeamID] = append(byTeam[inputs[i].TeamID], inputs[i].ToEntry())
	}

	entry := injuryCacheEntry{byTeam: byTeam, fetchedAt: time.Now()}

	r.mu.Lock()
	r.reports[sport] = entry
	r.mu.Unlock()

	return entry, nil
}
