package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/repository"
)

func newHistoryServer(t *testing.T) (*Server, *repository.FetchesRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo, err := repository.NewFetchesRepository(db)
	require.NoError(t, err)

	srv := NewServer(&Config{Title: "Test API", Version: "1.0.0"}, &Dependencies{
		Source:  &mockSource{},
		History: repo,
	})
	return srv, repo
}

func TestFetchesEndpoint(t *testing.T) {
	srv, repo := newHistoryServer(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, state := range []dashboard.State{dashboard.StateReady, dashboard.StateFailed, dashboard.StateReady} {
		require.NoError(t, repo.PublishFetchCompleted(ctx, dashboard.FetchEvent{
			SessionID:  "s1",
			View:       dashboard.ViewStats,
			State:      state,
			Generation: uint64(i + 1),
			DurationMS: int64(100 * (i + 1)),
			At:         at.Add(time.Duration(i) * time.Minute),
		}))
	}

	w := get(t, srv, "/api/v1/fetches?view=stats")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp FetchesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, uint64(3), resp.Fetches[0].Generation)

	w = get(t, srv, "/api/v1/fetches?failed=true")
	require.Equal(t, http.StatusOK, w.Code)
	resp = FetchesResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "failed", resp.Fetches[0].State)

	w = get(t, srv, "/api/v1/fetches?failed=false")
	require.Equal(t, http.StatusOK, w.Code)
	resp = FetchesResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, 2, resp.Count)
	for _, f := range resp.Fetches {
		assert.Equal(t, "ready", f.State)
	}

	w = get(t, srv, "/api/v1/fetches?session=unknown")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fetches":[],"count":0}`, w.Body.String())

	w = get(t, srv, "/api/v1/fetches/stats")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats FetchStatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	require.Len(t, stats.Views, 1)
	assert.Equal(t, int64(3), stats.Views[0].Total)
	assert.Equal(t, int64(1), stats.Views[0].Failed)
	assert.Equal(t, int64(300), stats.Views[0].MaxDurationMS)
}

func TestFetchesEndpoint_BadQuery(t *testing.T) {
	srv, _ := newHistoryServer(t)

	for _, path := range []string{
		"/api/v1/fetches?limit=0",
		"/api/v1/fetches?limit=500",
		"/api/v1/fetches?limit=ten",
		"/api/v1/fetches?failed=maybe",
	} {
		w := get(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestFetchesEndpoint_DisabledWithoutHistory(t *testing.T) {
	srv := newTestServer(&mockSource{}, nil)
	w := get(t, srv, "/api/v1/fetches")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
