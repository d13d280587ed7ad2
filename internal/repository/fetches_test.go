package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func boolPtr(b bool) *bool { return &b }

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *FetchesRepository) {
	t.Helper()
	ctx := context.Background()
	fetches := []Fetch{
		{SessionID: "s1", View: dashboard.ViewStats, State: "ready", Generation: 1, DurationMS: 120, At: base},
		{SessionID: "s1", View: dashboard.ViewStats, State: "failed", Generation: 2, Error: "timeout", DurationMS: 15000, At: base.Add(time.Minute)},
		{SessionID: "s2", View: dashboard.ViewTeams, State: "ready", Generation: 1, DurationMS: 80, At: base.Add(2 * time.Minute)},
		{SessionID: "s2", View: dashboard.ViewStats, State: "ready", Generation: 1, DurationMS: 60, At: base.Add(3 * time.Minute)},
	}
	for i := range fetches {
		require.NoError(t, repo.Create(ctx, &fetches[i]))
	}
}

func TestFetchesRepository_ListNewestFirst(t *testing.T) {
	repo, err := NewFetchesRepository(setupTestDB(t))
	require.NoError(t, err)
	seed(t, repo)

	all, err := repo.List(context.Background(), FetchFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "s2", all[0].SessionID)
	assert.Equal(t, dashboard.ViewStats, all[0].View)
	assert.Equal(t, base, all[3].At.UTC())
}

func TestFetchesRepository_ListFilters(t *testing.T) {
	repo, err := NewFetchesRepository(setupTestDB(t))
	require.NoError(t, err)
	seed(t, repo)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter FetchFilter
		want   int
	}{
		{"by view", FetchFilter{View: dashboard.ViewStats}, 3},
		{"by session", FetchFilter{SessionID: "s2"}, 2},
		{"failed only", FetchFilter{Failed: boolPtr(true)}, 1},
		{"successful only", FetchFilter{Failed: boolPtr(false)}, 3},
		{"successful stats", FetchFilter{View: dashboard.ViewStats, Failed: boolPtr(false)}, 2},
		{"view and session", FetchFilter{View: dashboard.ViewStats, SessionID: "s1"}, 2},
		{"limit", FetchFilter{Limit: 2}, 2},
		{"no match", FetchFilter{View: dashboard.ViewPlayers}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFetchesRepository_Stats(t *testing.T) {
	repo, err := NewFetchesRepository(setupTestDB(t))
	require.NoError(t, err)
	seed(t, repo)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, dashboard.ViewStats, stats[0].View)
	assert.Equal(t, int64(3), stats[0].Total)
	assert.Equal(t, int64(1), stats[0].Failed)
	assert.InDelta(t, 5060.0, stats[0].AvgDurationMS, 0.01)
	assert.Equal(t, int64(15000), stats[0].MaxDurationMS)

	assert.Equal(t, dashboard.ViewTeams, stats[1].View)
	assert.Equal(t, int64(1), stats[1].Total)
	assert.Equal(t, int64(0), stats[1].Failed)
}

func TestFetchesRepository_Prune(t *testing.T) {
	repo, err := NewFetchesRepository(setupTestDB(t))
	require.NoError(t, err)
	seed(t, repo)
	ctx := context.Background()

	n, err := repo.Prune(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repo.List(ctx, FetchFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestFetchesRepository_PublishFetchCompleted(t *testing.T) {
	repo, err := NewFetchesRepository(setupTestDB(t))
	require.NoError(t, err)

	err = repo.PublishFetchCompleted(context.Background(), dashboard.FetchEvent{
		SessionID:  "s9",
		View:       dashboard.ViewSummary,
		State:      dashboard.StateFailed,
		Generation: 3,
		Error:      "統計情報の取得に失敗しました",
		DurationMS: 42,
		At:         base,
	})
	require.NoError(t, err)

	got, err := repo.List(context.Background(), FetchFilter{SessionID: "s9"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "failed", got[0].State)
	assert.Equal(t, uint64(3), got[0].Generation)
	assert.Equal(t, "統計情報の取得に失敗しました", got[0].Error)
}

func TestFetchesRepository_RunPrunerStopsOnCancel(t *testing.T) {
	repo, err := NewFetchesRepository(setupTestDB(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		repo.RunPruner(ctx, time.Hour, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPruner did not return after cancel")
	}
}
