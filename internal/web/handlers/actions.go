package handlers

import (
	"net/http"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/web"
)

// ActionsHandler applies user selections to the session's controllers. Each
// action returns immediately with the view in its loading state; the result
// arrives through the WebSocket notification or the loading poll.
type ActionsHandler struct {
	templates *web.TemplateEngine
}

// NewActionsHandler creates a new actions handler
func NewActionsHandler(templates *web.TemplateEngine) *ActionsHandler {
	return &ActionsHandler{templates: templates}
}

// SelectTeam loads the roster of the posted team_id
func (h *ActionsHandler) SelectTeam(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	teamID := r.FormValue("team_id")
	if teamID == "" {
		http.Error(w, "team_id required", http.StatusBadRequest)
		return
	}

	sess.SelectTeam(teamID)
	renderFragment(w, h.templates, "players", newPlayersView(sess.Players.Snapshot()))
}

// SelectStats switches the stats view to the posted view and stats
func (h *ActionsHandler) SelectStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sel, err := models.ParseStatsSelection(r.FormValue("view"), r.FormValue("stats"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess.SelectStats(sel)
	renderFragment(w, h.templates, "stats-view", newStatsView(sess.Stats.Snapshot()))
}

// ReloadStats re-fetches the current stats selection
func (h *ActionsHandler) ReloadStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if sess.Stats.Snapshot().State == dashboard.StateIdle {
		sess.MountStats()
	} else {
		sess.ReloadStats()
	}
	renderFragment(w, h.templates, "stats-view", newStatsView(sess.Stats.Snapshot()))
}
