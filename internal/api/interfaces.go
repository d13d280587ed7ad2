package api

import (
	"context"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/repository"
)

// DataSource defines the NPB data the API exposes.
type DataSource interface {
	Statistics(ctx context.Context) (*models.Statistics, error)
	Teams(ctx context.Context) (*models.Teams, error)
	TeamsByLeague(ctx context.Context, league models.League) ([]models.Team, error)
	Stats(ctx context.Context, sel models.StatsSelection) (*models.StatsResult, error)
	LastUpdated(ctx context.Context) (models.Timestamp, error)
}

// SessionStore defines lookup of dashboard sessions.
type SessionStore interface {
	Get(id string) (*dashboard.Session, error)
	Len() int
}

// FetchHistory defines read access to the stored fetch history.
type FetchHistory interface {
	List(ctx context.Context, filter repository.FetchFilter) ([]repository.Fetch, error)
	Stats(ctx context.Context) ([]repository.ViewStats, error)
}

// Broker reports the state of the event bus connection.
type Broker interface {
	Connected() bool
}
