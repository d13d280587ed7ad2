package handlers

import (
	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/table"
)

// Option is one entry of a select box
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// TeamGroup is the teams of one league
type TeamGroup struct {
	League models.League
	Label  string
	Teams  []models.Team
}

// SummaryView feeds the summary cards
type SummaryView struct {
	dashboard.Snapshot[dashboard.Refresh, *models.Statistics]
}

// FreshnessView feeds a "last updated" line
type FreshnessView struct {
	dashboard.Snapshot[dashboard.Refresh, models.Timestamp]
}

// TeamsView feeds the team cards and the team selector
type TeamsView struct {
	dashboard.Snapshot[dashboard.Refresh, *models.Teams]
	Groups       []TeamGroup
	Poll         string
	SelectedTeam string
}

func newTeamsView(snap dashboard.Snapshot[dashboard.Refresh, *models.Teams], league models.League, poll string) TeamsView {
	v := TeamsView{Snapshot: snap, Poll: poll}
	if !snap.HasData || snap.Data == nil {
		return v
	}
	for _, l := range models.Leagues {
		if league != "" && l != league {
			continue
		}
		v.Groups = append(v.Groups, TeamGroup{
			League: l,
			Label:  l.Label(),
			Teams:  snap.Data.ByLeague(l),
		})
	}
	return v
}

// playerIDKeys are the record keys that may carry a player id, in lookup order
var playerIDKeys = []string{"id", "player_id", "選手ID"}

// PlayersView feeds the roster table
type PlayersView struct {
	dashboard.Snapshot[string, models.RecordCollection]
	Table *table.Table
	ids   []string
}

func newPlayersView(snap dashboard.Snapshot[string, models.RecordCollection]) PlayersView {
	v := PlayersView{Snapshot: snap}
	if snap.State != dashboard.StateReady {
		return v
	}
	v.Table = table.Build(snap.Data)
	v.ids = make([]string, len(snap.Data))
	for i, rec := range snap.Data {
		for _, k := range playerIDKeys {
			if id, ok := rec.Get(k); ok {
				v.ids[i] = table.FormatValue(id)
				break
			}
		}
	}
	return v
}

// DetailID returns the player id of row i, or "" when the record has none.
func (v PlayersView) DetailID(i int) string {
	if i < 0 || i >= len(v.ids) {
		return ""
	}
	return v.ids[i]
}

// PlayerView feeds the player detail card
type PlayerView struct {
	Fields []models.Field
	Error  string
}

// StatsView feeds the stats tables
type StatsView struct {
	dashboard.Snapshot[models.StatsSelection, *models.StatsResult]
	Title       string
	Leaderboard bool
	Table       *table.Table
	Sections    []table.Section
	LastUpdated string
}

func newStatsView(snap dashboard.Snapshot[models.StatsSelection, *models.StatsResult]) StatsView {
	sel := snap.Selection
	v := StatsView{
		Snapshot:    snap,
		Title:       sel.View.Label() + " / " + sel.Stats.Label(),
		Leaderboard: sel.IsLeaderboard(),
	}
	if !snap.HasData || snap.Data == nil {
		return v
	}
	if v.Leaderboard {
		v.Sections = table.BuildLeaderboard(snap.Data.Categories)
	} else {
		v.Table = table.Build(snap.Data.Records)
	}
	return v
}

func viewOptions(selected models.ViewType) []Option {
	opts := make([]Option, 0, len(models.ViewTypes))
	for _, v := range models.ViewTypes {
		opts = append(opts, Option{Value: string(v), Label: v.Label(), Selected: v == selected})
	}
	return opts
}

func statsOptions(selected models.StatsType) []Option {
	opts := make([]Option, 0, len(models.StatsTypes))
	for _, s := range models.StatsTypes {
		opts = append(opts, Option{Value: string(s), Label: s.Label(), Selected: s == selected})
	}
	return opts
}
