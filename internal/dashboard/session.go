package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blockedby/npb-dashboard/internal/logger"
	"github.com/blockedby/npb-dashboard/internal/models"
)

// View names.
const (
	ViewSummary        = "summary"
	ViewTeams          = "teams"
	ViewTeamsFreshness = "teams-freshness"
	ViewPlayers        = "players"
	ViewStats          = "stats"
	ViewStatsFreshness = "stats-freshness"
)

// Source is the data the dashboard reads from the NPB API.
type Source interface {
	Statistics(ctx context.Context) (*models.Statistics, error)
	Teams(ctx context.Context) (*models.Teams, error)
	TeamsLastUpdated(ctx context.Context) (models.Timestamp, error)
	Players(ctx context.Context, teamID string) (models.RecordCollection, error)
	Player(ctx context.Context, playerID string) (*models.Record, error)
	Stats(ctx context.Context, sel models.StatsSelection) (*models.StatsResult, error)
	LastUpdated(ctx context.Context) (models.Timestamp, error)
}

// Refresh is the selection of views that have no user selection: every
// refresh is a new fetch of the same resource.
type Refresh struct{}

// Session is the view state of one browser session. Each view is owned
// exclusively by its controller.
type Session struct {
	ID        string
	CreatedAt time.Time

	Summary        *Controller[Refresh, *models.Statistics]
	Teams          *Controller[Refresh, *models.Teams]
	TeamsFreshness *Controller[Refresh, models.Timestamp]
	Players        *Controller[string, models.RecordCollection]
	Stats          *Controller[models.StatsSelection, *models.StatsResult]
	StatsFreshness *Controller[Refresh, models.Timestamp]

	mu       sync.Mutex
	lastSeen time.Time
}

// ChangeHook receives every view change of every session.
type ChangeHook func(sessionID string, ch Change)

func newSession(id string, src Source, hook ChangeHook, log *logger.Logger) *Session {
	now := time.Now()
	s := &Session{ID: id, CreatedAt: now, lastSeen: now}

	onChange := func(ch Change) {
		if hook != nil {
			hook(id, ch)
		}
	}
	log = &logger.Logger{Logger: log.With().Str("session", id).Logger()}

	s.Summary = NewController(ViewSummary, func(ctx context.Context, _ Refresh) (*models.Statistics, error) {
		stats, err := src.Statistics(ctx)
		if err != nil {
			return nil, fmt.Errorf("統計情報の取得に失敗しました: %w", err)
		}
		return stats, nil
	}, onChange, log)

	s.Teams = NewController(ViewTeams, func(ctx context.Context, _ Refresh) (*models.Teams, error) {
		teams, err := src.Teams(ctx)
		if err != nil {
			return nil, fmt.Errorf("チームデータの取得に失敗しました: %w", err)
		}
		return teams, nil
	}, onChange, log)

	s.TeamsFreshness = NewController(ViewTeamsFreshness, func(ctx context.Context, _ Refresh) (models.Timestamp, error) {
		return src.TeamsLastUpdated(ctx)
	}, onChange, log)

	s.Players = NewController(ViewPlayers, func(ctx context.Context, teamID string) (models.RecordCollection, error) {
		players, err := src.Players(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("選手データの取得に失敗しました: %w", err)
		}
		return players, nil
	}, onChange, log)

	s.Stats = NewController(ViewStats, func(ctx context.Context, sel models.StatsSelection) (*models.StatsResult, error) {
		res, err := src.Stats(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("成績データの取得に失敗しました: %w", err)
		}
		return res, nil
	}, onChange, log)

	s.StatsFreshness = NewController(ViewStatsFreshness, func(ctx context.Context, _ Refresh) (models.Timestamp, error) {
		return src.LastUpdated(ctx)
	}, onChange, log)

	return s
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SelectStats switches the stats view and fires the independent freshness
// fetch alongside it.
func (s *Session) SelectStats(sel models.StatsSelection) uint64 {
	gen := s.Stats.Select(sel)
	s.StatsFreshness.Select(Refresh{})
	return gen
}

// ReloadStats re-fetches the current stats selection and its freshness.
func (s *Session) ReloadStats() uint64 {
	gen := s.Stats.Reload()
	s.StatsFreshness.Select(Refresh{})
	return gen
}

// MountStats loads the default stats selection on first display.
func (s *Session) MountStats() {
	if s.Stats.EnsureStarted(models.DefaultStatsSelection) {
		s.StatsFreshness.Select(Refresh{})
	}
}

// MountTeams loads the team directory and its freshness on first display.
func (s *Session) MountTeams() {
	if s.Teams.EnsureStarted(Refresh{}) {
		s.TeamsFreshness.Select(Refresh{})
	}
}

// MountSummary loads the summary cards on first display.
func (s *Session) MountSummary() {
	s.Summary.EnsureStarted(Refresh{})
}

// SelectTeam loads the roster of a team. The team id flows down from the
// team selector.
func (s *Session) SelectTeam(teamID string) uint64 {
	return s.Players.Select(teamID)
}

// Wait blocks until every fetch started so far has finished.
func (s *Session) Wait() {
	s.Summary.Wait()
	s.Teams.Wait()
	s.TeamsFreshness.Wait()
	s.Players.Wait()
	s.Stats.Wait()
	s.StatsFreshness.Wait()
}

// Close cancels all in-flight fetches.
func (s *Session) Close() {
	s.Summary.Close()
	s.Teams.Close()
	s.TeamsFreshness.Close()
	s.Players.Close()
	s.Stats.Close()
	s.StatsFreshness.Close()
}

// Overview is a JSON-friendly snapshot of every view of a session.
type Overview struct {
	ID             string                                               `json:"id"`
	CreatedAt      time.Time                                            `json:"created_at"`
	LastSeen       time.Time                                            `json:"last_seen"`
	Summary        Snapshot[Refresh, *models.Statistics]                `json:"summary"`
	Teams          Snapshot[Refresh, *models.Teams]                     `json:"teams"`
	TeamsFreshness Snapshot[Refresh, models.Timestamp]                  `json:"teams_freshness"`
	Players        Snapshot[string, models.RecordCollection]            `json:"players"`
	Stats          Snapshot[models.StatsSelection, *models.StatsResult] `json:"stats"`
	StatsFreshness Snapshot[Refresh, models.Timestamp]                  `json:"stats_freshness"`
}

// Overview snapshots every view.
func (s *Session) Overview() Overview {
	return Overview{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		LastSeen:       s.LastSeen(),
		Summary:        s.Summary.Snapshot(),
		Teams:          s.Teams.Snapshot(),
		TeamsFreshness: s.TeamsFreshness.Snapshot(),
		Players:        s.Players.Snapshot(),
		Stats:          s.Stats.Snapshot(),
		StatsFreshness: s.StatsFreshness.Snapshot(),
	}
}
