package models

import "fmt"

// ViewType selects how statistics are grouped.
type ViewType string

// ViewType constants.
const (
	ViewTeam       ViewType = "team"
	ViewIndividual ViewType = "individual"
	ViewLeaders    ViewType = "leaders"
)

// ViewTypes lists the views in tab order.
var ViewTypes = []ViewType{ViewTeam, ViewIndividual, ViewLeaders}

// Label returns the tab label of the view.
func (v ViewType) Label() string {
	switch v {
	case ViewTeam:
		return "チーム成績"
	case ViewIndividual:
		return "個人成績"
	case ViewLeaders:
		return "リーダーボード"
	}
	return string(v)
}

// StatsType selects the statistics category.
type StatsType string

// StatsType constants.
const (
	StatsBatting  StatsType = "batting"
	StatsPitching StatsType = "pitching"
	StatsFielding StatsType = "fielding"
)

// StatsTypes lists the categories in selector order.
var StatsTypes = []StatsType{StatsBatting, StatsPitching, StatsFielding}

// Label returns the selector label of the category.
func (s StatsType) Label() string {
	switch s {
	case StatsBatting:
		return "打撃成績"
	case StatsPitching:
		return "投手成績"
	case StatsFielding:
		return "守備成績"
	}
	return string(s)
}

// ParseViewType validates a view name.
func ParseViewType(s string) (ViewType, error) {
	for _, v := range ViewTypes {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid view type %q", s)
}

// ParseStatsType validates a stats category name.
func ParseStatsType(s string) (StatsType, error) {
	for _, t := range StatsTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid stats type %q", s)
}

// StatsSelection is the (view, category) pair a stats fetch is issued for.
type StatsSelection struct {
	View  ViewType  `json:"view"`
	Stats StatsType `json:"stats"`
}

// DefaultStatsSelection is shown on first mount.
var DefaultStatsSelection = StatsSelection{View: ViewTeam, Stats: StatsBatting}

// ParseStatsSelection validates both parts of a selection.
func ParseStatsSelection(view, stats string) (StatsSelection, error) {
	v, err := ParseViewType(view)
	if err != nil {
		return StatsSelection{}, err
	}
	s, err := ParseStatsType(stats)
	if err != nil {
		return StatsSelection{}, err
	}
	return StatsSelection{View: v, Stats: s}, nil
}

// Path returns the API path of the selection, e.g. /team/batting.
func (s StatsSelection) Path() string {
	return "/" + string(s.View) + "/" + string(s.Stats)
}

// String implements fmt.Stringer.
func (s StatsSelection) String() string {
	return string(s.View) + "/" + string(s.Stats)
}

// IsLeaderboard reports whether the selection yields leaderboard categories.
func (s StatsSelection) IsLeaderboard() bool {
	return s.View == ViewLeaders
}

// StatsResult is the payload of a stats fetch: a flat collection for the
// team and individual views, categories for the leaders view.
type StatsResult struct {
	Selection  StatsSelection        `json:"selection"`
	Records    RecordCollection      `json:"records,omitempty"`
	Categories []LeaderboardCategory `json:"categories,omitempty"`
}

// Empty reports whether the result has nothing to render.
func (r *StatsResult) Empty() bool {
	if r == nil {
		return true
	}
	if r.Selection.IsLeaderboard() {
		return len(r.Categories) == 0
	}
	return len(r.Records) == 0
}
