package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/blockedby/npb-dashboard/internal/logger"
	"github.com/blockedby/npb-dashboard/internal/models"
)

// Upstream is the NPB data served through the cache.
type Upstream interface {
	Statistics(ctx context.Context) (*models.Statistics, error)
	Teams(ctx context.Context) (*models.Teams, error)
	TeamsByLeague(ctx context.Context, league models.League) ([]models.Team, error)
	Stats(ctx context.Context, sel models.StatsSelection) (*models.StatsResult, error)
	LastUpdated(ctx context.Context) (models.Timestamp, error)
}

// Source serves Upstream reads from a Store, falling back to the upstream
// on a miss. Errors are never cached; cache failures only cost a fetch.
type Source struct {
	upstream Upstream
	store    Store
	ttl      time.Duration
	log      *logger.Logger
}

// NewSource wraps upstream with store. Entries live for ttl.
func NewSource(upstream Upstream, store Store, ttl time.Duration) *Source {
	return &Source{
		upstream: upstream,
		store:    store,
		ttl:      ttl,
		log:      logger.Get().Component("cache"),
	}
}

// Statistics implements Upstream.
func (s *Source) Statistics(ctx context.Context) (*models.Statistics, error) {
	return cached(ctx, s, "statistics", func() (*models.Statistics, error) {
		return s.upstream.Statistics(ctx)
	})
}

// Teams implements Upstream.
func (s *Source) Teams(ctx context.Context) (*models.Teams, error) {
	return cached(ctx, s, "teams", func() (*models.Teams, error) {
		return s.upstream.Teams(ctx)
	})
}

// TeamsByLeague implements Upstream.
func (s *Source) TeamsByLeague(ctx context.Context, league models.League) ([]models.Team, error) {
	return cached(ctx, s, "teams:"+string(league), func() ([]models.Team, error) {
		return s.upstream.TeamsByLeague(ctx, league)
	})
}

// Stats implements Upstream.
func (s *Source) Stats(ctx context.Context, sel models.StatsSelection) (*models.StatsResult, error) {
	return cached(ctx, s, "stats:"+sel.String(), func() (*models.StatsResult, error) {
		return s.upstream.Stats(ctx, sel)
	})
}

// LastUpdated implements Upstream.
func (s *Source) LastUpdated(ctx context.Context) (models.Timestamp, error) {
	return cached(ctx, s, "last-updated", func() (models.Timestamp, error) {
		return s.upstream.LastUpdated(ctx)
	})
}

func cached[T any](ctx context.Context, s *Source, key string, fetch func() (T, error)) (T, error) {
	data, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		s.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, ErrMiss):
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return v, nil
	}
	if err := s.store.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}
