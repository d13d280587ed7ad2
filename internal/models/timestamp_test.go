package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"naive isoformat", "2024-03-01T09:05:00", time.Date(2024, 3, 1, 9, 5, 0, 0, time.Local)},
		{"with micros", "2024-03-01T09:05:00.123456", time.Date(2024, 3, 1, 9, 5, 0, 123456000, time.Local)},
		{"rfc3339", "2024-03-01T09:05:00+09:00", time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC)},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %s want %s", ts.Time, tt.want)
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_JAFormat(t *testing.T) {
	ts := Timestamp{time.Date(2024, 3, 1, 9, 5, 0, 0, time.Local)}
	assert.Equal(t, "2024/3/1", ts.JADate())
	assert.Equal(t, "9:05:00", ts.JATime())
	assert.Equal(t, "2024/3/1 9:05:00", ts.JADateTime())

	var zero Timestamp
	assert.Empty(t, zero.JADateTime())
}

func TestStatistics_UnmarshalNullTimestamp(t *testing.T) {
	var stats Statistics
	require.NoError(t, json.Unmarshal([]byte(`{"total_players":850,"teams":12,"last_updated":null}`), &stats))

	assert.Equal(t, 850, stats.TotalPlayers)
	assert.Equal(t, 12, stats.Teams)
	assert.True(t, stats.LastUpdated.IsZero())
}

func TestParseStatsSelection(t *testing.T) {
	sel, err := ParseStatsSelection("leaders", "pitching")
	require.NoError(t, err)
	assert.Equal(t, "/leaders/pitching", sel.Path())
	assert.True(t, sel.IsLeaderboard())

	_, err = ParseStatsSelection("season", "batting")
	assert.Error(t, err)
	_, err = ParseStatsSelection("team", "running")
	assert.Error(t, err)
}
