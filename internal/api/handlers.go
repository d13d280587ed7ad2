package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-fuego/fuego"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/npbapi"
	"github.com/blockedby/npb-dashboard/internal/repository"
)

// ============================================================================
// Health
// ============================================================================

func (s *Server) healthCheck(_ fuego.ContextNoBody) (HealthResponse, error) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
	}
	if s.deps.Sessions != nil {
		resp.Sessions = s.deps.Sessions.Len()
	}
	if s.deps.Broker != nil {
		resp.NATS = "disconnected"
		if s.deps.Broker.Connected() {
			resp.NATS = "connected"
		}
	}
	return resp, nil
}

// ============================================================================
// Tables
// ============================================================================

func (s *Server) getTable(c fuego.ContextNoBody) (TableResponse, error) {
	sel, err := models.ParseStatsSelection(c.PathParam("view"), c.PathParam("stats"))
	if err != nil {
		return TableResponse{}, fuego.BadRequestError{Detail: err.Error()}
	}

	res, err := s.deps.Source.Stats(c.Context(), sel)
	if err != nil {
		return TableResponse{}, upstreamError(err)
	}
	resp := newTableResponse(res)

	if withFreshness, _ := strconv.ParseBool(c.QueryParam("freshness")); withFreshness {
		// freshness is best effort
		if ts, err := s.deps.Source.LastUpdated(c.Context()); err == nil {
			resp.LastUpdated = ts.JADateTime()
		}
	}
	return resp, nil
}

// ============================================================================
// Teams
// ============================================================================

func (s *Server) listTeams(c fuego.ContextNoBody) (TeamsResponse, error) {
	teams, err := s.deps.Source.Teams(c.Context())
	if err != nil {
		return TeamsResponse{}, upstreamError(err)
	}
	return TeamsResponse{
		Central: TeamsFromModel(teams.Central, models.LeagueCentral),
		Pacific: TeamsFromModel(teams.Pacific, models.LeaguePacific),
		Total:   teams.Len(),
	}, nil
}

func (s *Server) listLeagueTeams(c fuego.ContextNoBody) ([]TeamResponse, error) {
	league, err := models.ParseLeague(c.PathParam("league"))
	if err != nil {
		return nil, fuego.BadRequestError{Detail: err.Error()}
	}

	teams, err := s.deps.Source.TeamsByLeague(c.Context(), league)
	if err != nil {
		return nil, upstreamError(err)
	}
	return TeamsFromModel(teams, league), nil
}

// ============================================================================
// Statistics
// ============================================================================

func (s *Server) getStatistics(c fuego.ContextNoBody) (StatisticsResponse, error) {
	stats, err := s.deps.Source.Statistics(c.Context())
	if err != nil {
		return StatisticsResponse{}, upstreamError(err)
	}

	resp := StatisticsResponse{
		TotalPlayers: stats.TotalPlayers,
		Teams:        stats.Teams,
	}
	if !stats.LastUpdated.IsZero() {
		resp.LastUpdated = stats.LastUpdated.Format(time.RFC3339)
		resp.Date = stats.LastUpdated.JADate()
		resp.Time = stats.LastUpdated.JATime()
	}
	return resp, nil
}

// ============================================================================
// Sessions
// ============================================================================

func (s *Server) getSession(c fuego.ContextNoBody) (SessionResponse, error) {
	if s.deps.Sessions == nil {
		return SessionResponse{}, fuego.NotFoundError{Detail: "Sessions are not available"}
	}
	sess, err := s.deps.Sessions.Get(c.PathParam("id"))
	if errors.Is(err, dashboard.ErrSessionNotFound) {
		return SessionResponse{}, fuego.NotFoundError{Detail: "Session not found"}
	}
	if err != nil {
		return SessionResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}
	return SessionFromOverview(sess.Overview()), nil
}

// ============================================================================
// History
// ============================================================================

func (s *Server) listFetches(c fuego.ContextNoBody) (FetchesResponse, error) {
	filter := repository.FetchFilter{
		View:      c.QueryParam("view"),
		SessionID: c.QueryParam("session"),
	}
	if v := c.QueryParam("failed"); v != "" {
		failed, err := strconv.ParseBool(v)
		if err != nil {
			return FetchesResponse{}, fuego.BadRequestError{Detail: "failed must be a boolean"}
		}
		filter.Failed = &failed
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > repository.DefaultLimit {
			return FetchesResponse{}, fuego.BadRequestError{Detail: "limit must be between 1 and 100"}
		}
		filter.Limit = limit
	}

	fetches, err := s.deps.History.List(c.Context(), filter)
	if err != nil {
		return FetchesResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}
	if fetches == nil {
		fetches = []repository.Fetch{}
	}
	return FetchesResponse{Fetches: fetches, Count: len(fetches)}, nil
}

func (s *Server) getFetchStats(c fuego.ContextNoBody) (FetchStatsResponse, error) {
	stats, err := s.deps.History.Stats(c.Context())
	if err != nil {
		return FetchStatsResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}
	if stats == nil {
		stats = []repository.ViewStats{}
	}
	return FetchStatsResponse{Views: stats}, nil
}

// upstreamError maps an NPB API failure to an HTTP error.
func upstreamError(err error) error {
	if errors.Is(err, npbapi.ErrNotFound) {
		return fuego.NotFoundError{Detail: err.Error()}
	}
	return fuego.HTTPError{
		Title:  "Bad Gateway",
		Status: http.StatusBadGateway,
		Detail: err.Error(),
	}
}
