package models

import "fmt"

// League identifies one of the two NPB leagues.
type League string

// League constants.
const (
	LeagueCentral League = "central"
	LeaguePacific League = "pacific"
)

// Leagues lists the leagues in display order.
var Leagues = []League{LeagueCentral, LeaguePacific}

// ParseLeague validates a league name.
func ParseLeague(s string) (League, error) {
	switch League(s) {
	case LeagueCentral, LeaguePacific:
		return League(s), nil
	}
	return "", fmt.Errorf("invalid league %q: must be 'central' or 'pacific'", s)
}

// Label returns the Japanese display name of the league.
func (l League) Label() string {
	switch l {
	case LeagueCentral:
		return "セ・リーグ"
	case LeaguePacific:
		return "パ・リーグ"
	}
	return string(l)
}

// TeamName holds the Japanese and English team names.
type TeamName struct {
	JA string `json:"ja"`
	EN string `json:"en"`
}

// Team is one entry of the team directory.
type Team struct {
	ID      string   `json:"id,omitempty"`
	Name    TeamName `json:"name"`
	Details Record   `json:"details"`
	LogoURL string   `json:"logo_url,omitempty"`
}

// Key returns the value used to select the team: its id when the API sends
// one, otherwise the English name.
func (t Team) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Name.EN
}

// Teams is the team directory grouped by league.
type Teams struct {
	Central []Team `json:"central"`
	Pacific []Team `json:"pacific"`
}

// ByLeague returns the teams of one league.
func (t Teams) ByLeague(l League) []Team {
	switch l {
	case LeagueCentral:
		return t.Central
	case LeaguePacific:
		return t.Pacific
	}
	return nil
}

// Find returns the team with the given selection key.
func (t Teams) Find(key string) (Team, bool) {
	for _, l := range Leagues {
		for _, team := range t.ByLeague(l) {
			if team.Key() == key {
				return team, true
			}
		}
	}
	return Team{}, false
}

// Len returns the number of teams in both leagues.
func (t Teams) Len() int {
	return len(t.Central) + len(t.Pacific)
}
