// Package repository stores the history of resolved dashboard fetches.
package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/logger"
)

// DefaultLimit caps List when the filter sets no limit.
const DefaultLimit = 100

// Fetch is one resolved fetch of a dashboard view.
type Fetch struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"size:36;index" json:"session_id"`
	View       string    `gorm:"column:view_name;size:32;index" json:"view"`
	State      string    `gorm:"size:16" json:"state"`
	Generation uint64    `json:"generation"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `gorm:"index" json:"at"`
}

// TableName implements gorm's Tabler.
func (Fetch) TableName() string {
	return "fetch_history"
}

// FetchFilter narrows List.
type FetchFilter struct {
	View      string
	SessionID string
	// Failed selects failed fetches when true and the rest when false;
	// nil applies no state filter.
	Failed *bool
	Limit  int
}

// ViewStats aggregates the fetches of one view.
type ViewStats struct {
	View          string  `gorm:"column:view_name" json:"view"`
	Total         int64   `gorm:"column:total" json:"total"`
	Failed        int64   `gorm:"column:failed" json:"failed"`
	AvgDurationMS float64 `gorm:"column:avg_duration_ms" json:"avg_duration_ms"`
	MaxDurationMS int64   `gorm:"column:max_duration_ms" json:"max_duration_ms"`
}

// FetchesRepository provides access to the fetch history.
type FetchesRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewFetchesRepository creates the repository and migrates its table.
func NewFetchesRepository(db *gorm.DB) (*FetchesRepository, error) {
	if err := db.AutoMigrate(&Fetch{}); err != nil {
		return nil, fmt.Errorf("migrate fetch history: %w", err)
	}
	return &FetchesRepository{db: db, log: logger.Get().Component("history")}, nil
}

// PublishFetchCompleted implements dashboard.EventPublisher.
func (r *FetchesRepository) PublishFetchCompleted(ctx context.Context, event dashboard.FetchEvent) error {
	return r.Create(ctx, &Fetch{
		SessionID:  event.SessionID,
		View:       event.View,
		State:      string(event.State),
		Generation: event.Generation,
		Error:      event.Error,
		DurationMS: event.DurationMS,
		At:         event.At,
	})
}

// Create stores one fetch. Times are kept in UTC.
func (r *FetchesRepository) Create(ctx context.Context, f *Fetch) error {
	f.At = f.At.UTC()
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("insert fetch: %w", err)
	}
	return nil
}

// List returns the most recent fetches matching filter, newest first.
func (r *FetchesRepository) List(ctx context.Context, filter FetchFilter) ([]Fetch, error) {
	q := r.db.WithContext(ctx).Model(&Fetch{})
	if filter.View != "" {
		q = q.Where("view_name = ?", filter.View)
	}
	if filter.SessionID != "" {
		q = q.Where("session_id = ?", filter.SessionID)
	}
	if filter.Failed != nil {
		if *filter.Failed {
			q = q.Where("state = ?", string(dashboard.StateFailed))
		} else {
			q = q.Where("state <> ?", string(dashboard.StateFailed))
		}
	}

	limit := filter.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	var fetches []Fetch
	if err := q.Order("at DESC").Order("id DESC").Limit(limit).Find(&fetches).Error; err != nil {
		return nil, fmt.Errorf("list fetches: %w", err)
	}
	return fetches, nil
}

// Stats aggregates the history per view, ordered by view name.
func (r *FetchesRepository) Stats(ctx context.Context) ([]ViewStats, error) {
	var stats []ViewStats
	err := r.db.WithContext(ctx).Model(&Fetch{}).
		Select(`view_name,
			COUNT(*) AS total,
			COUNT(CASE WHEN state = 'failed' THEN 1 END) AS failed,
			AVG(duration_ms) AS avg_duration_ms,
			MAX(duration_ms) AS max_duration_ms`).
		Group("view_name").
		Order("view_name").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("get fetch stats: %w", err)
	}
	return stats, nil
}

// Prune deletes fetches older than before and returns how many were removed.
func (r *FetchesRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("at < ?", before.UTC()).Delete(&Fetch{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune fetches: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RunPruner deletes fetches older than retention every interval until ctx is
// done.
func (r *FetchesRepository) RunPruner(ctx context.Context, retention, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := r.Prune(ctx, now.Add(-retention))
			if err != nil {
				r.log.Warn().Err(err).Msg("failed to prune fetch history")
				continue
			}
			if n > 0 {
				r.log.Info().Int64("deleted", n).Msg("pruned fetch history")
			}
		}
	}
}
