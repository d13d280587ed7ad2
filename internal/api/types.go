package api

import (
	"time"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/repository"
	"github.com/blockedby/npb-dashboard/internal/table"
)

// ============================================================================
// Common Types
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status" example:"ok" description:"Health status"`
	Version  string `json:"version" example:"dev" description:"Application version"`
	Sessions int    `json:"sessions" description:"Number of live dashboard sessions"`
	NATS     string `json:"nats,omitempty" example:"connected" description:"Event bus connection, omitted when publishing is disabled"`
}

// ============================================================================
// Tables
// ============================================================================

// TableResponse is a stats selection rendered as headers and rows. Exactly
// one of Table and Sections is set: Sections for the leaders view.
type TableResponse struct {
	View        models.ViewType  `json:"view" example:"team" description:"View type: team, individual, leaders"`
	Stats       models.StatsType `json:"stats" example:"batting" description:"Stats type: batting, pitching, fielding"`
	Title       string           `json:"title" example:"チーム成績 / 打撃成績" description:"Display title"`
	Table       *table.Table     `json:"table,omitempty" description:"Rendered table; absent when the collection is empty"`
	Sections    []table.Section  `json:"sections,omitempty" description:"Leaderboard sections, one per category"`
	LastUpdated string           `json:"last_updated,omitempty" example:"2024/3/1 12:00:00" description:"Freshness of the stats data in ja-JP format"`
}

func newTableResponse(res *models.StatsResult) TableResponse {
	sel := res.Selection
	resp := TableResponse{
		View:  sel.View,
		Stats: sel.Stats,
		Title: sel.View.Label() + " / " + sel.Stats.Label(),
	}
	if sel.IsLeaderboard() {
		resp.Sections = table.BuildLeaderboard(res.Categories)
	} else {
		resp.Table = table.Build(res.Records)
	}
	return resp
}

// ============================================================================
// Teams
// ============================================================================

// TeamResponse represents a team in API responses.
type TeamResponse struct {
	Key     string        `json:"key" example:"giants" description:"Selection key: id, or English name when the id is absent"`
	NameJA  string        `json:"name_ja" example:"読売ジャイアンツ"`
	NameEN  string        `json:"name_en" example:"Yomiuri Giants"`
	League  models.League `json:"league" example:"central"`
	LogoURL string        `json:"logo_url,omitempty"`
	Details []DetailField `json:"details" description:"Team details in source order"`
}

// DetailField is one key/value line of team details.
type DetailField struct {
	Key   string `json:"key" example:"本拠地"`
	Value string `json:"value" example:"東京ドーム"`
}

// TeamsResponse lists teams grouped by league.
type TeamsResponse struct {
	Central []TeamResponse `json:"central"`
	Pacific []TeamResponse `json:"pacific"`
	Total   int            `json:"total"`
}

// TeamFromModel converts a team to its API form.
func TeamFromModel(t models.Team, league models.League) TeamResponse {
	details := make([]DetailField, 0, t.Details.Len())
	for _, f := range t.Details.Fields() {
		details = append(details, DetailField{Key: f.Key, Value: table.FormatValue(f.Value)})
	}
	return TeamResponse{
		Key:     t.Key(),
		NameJA:  t.Name.JA,
		NameEN:  t.Name.EN,
		League:  league,
		LogoURL: t.LogoURL,
		Details: details,
	}
}

// TeamsFromModel converts a slice of teams.
func TeamsFromModel(teams []models.Team, league models.League) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamFromModel(t, league))
	}
	return out
}

// ============================================================================
// Statistics
// ============================================================================

// StatisticsResponse is the summary card data.
type StatisticsResponse struct {
	TotalPlayers int    `json:"total_players" example:"850"`
	Teams        int    `json:"teams" example:"12"`
	LastUpdated  string `json:"last_updated,omitempty" example:"2024-03-01T12:00:00+09:00" description:"RFC 3339 timestamp"`
	Date         string `json:"date,omitempty" example:"2024/3/1" description:"Last update date in ja-JP format"`
	Time         string `json:"time,omitempty" example:"12:00:00" description:"Last update time in ja-JP format"`
}

// ============================================================================
// Sessions
// ============================================================================

// ViewResponse is the state of one view of a session.
type ViewResponse struct {
	View       string    `json:"view" example:"stats"`
	State      string    `json:"state" example:"ready" description:"idle, loading, ready or failed"`
	Selection  string    `json:"selection,omitempty" example:"team/batting"`
	Generation uint64    `json:"generation" description:"Fetch counter; only the latest generation is applied"`
	HasData    bool      `json:"has_data"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionResponse is the state of every view of a dashboard session.
type SessionResponse struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	LastSeen  time.Time      `json:"last_seen"`
	Views     []ViewResponse `json:"views"`
}

func viewFromSnapshot[S comparable, T any](snap dashboard.Snapshot[S, T], selection string) ViewResponse {
	return ViewResponse{
		View:       snap.View,
		State:      string(snap.State),
		Selection:  selection,
		Generation: snap.Generation,
		HasData:    snap.HasData,
		Error:      snap.Error,
		UpdatedAt:  snap.UpdatedAt,
	}
}

// SessionFromOverview converts a session overview.
func SessionFromOverview(ov dashboard.Overview) SessionResponse {
	var statsSel string
	if ov.Stats.State != dashboard.StateIdle {
		statsSel = ov.Stats.Selection.String()
	}
	return SessionResponse{
		ID:        ov.ID,
		CreatedAt: ov.CreatedAt,
		LastSeen:  ov.LastSeen,
		Views: []ViewResponse{
			viewFromSnapshot(ov.Summary, ""),
			viewFromSnapshot(ov.Teams, ""),
			viewFromSnapshot(ov.TeamsFreshness, ""),
			viewFromSnapshot(ov.Players, ov.Players.Selection),
			viewFromSnapshot(ov.Stats, statsSel),
			viewFromSnapshot(ov.StatsFreshness, ""),
		},
	}
}

// ============================================================================
// History
// ============================================================================

// FetchesResponse lists stored fetches.
type FetchesResponse struct {
	Fetches []repository.Fetch `json:"fetches"`
	Count   int                `json:"count"`
}

// FetchStatsResponse aggregates stored fetches per view.
type FetchStatsResponse struct {
	Views []repository.ViewStats `json:"views"`
}
