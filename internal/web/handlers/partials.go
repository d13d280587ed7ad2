package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blockedby/npb-dashboard/internal/logger"
	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/npbapi"
	"github.com/blockedby/npb-dashboard/internal/web"
)

// PartialsHandler renders the HTMX fragments of each view
type PartialsHandler struct {
	templates *web.TemplateEngine
	players   PlayerSource
	log       *logger.Logger
}

// NewPartialsHandler creates a new partials handler
func NewPartialsHandler(templates *web.TemplateEngine, players PlayerSource) *PartialsHandler {
	return &PartialsHandler{
		templates: templates,
		players:   players,
		log:       logger.Get().Component("partials"),
	}
}

// Summary renders the summary cards, starting the first fetch if needed
func (h *PartialsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sess.MountSummary()
	renderFragment(w, h.templates, "summary-cards", SummaryView{Snapshot: sess.Summary.Snapshot()})
}

// Teams renders the team cards, or the team selector with ?layout=selector.
// ?league narrows the cards to one league.
func (h *PartialsHandler) Teams(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var league models.League
	if l := r.URL.Query().Get("league"); l != "" {
		parsed, err := models.ParseLeague(l)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		league = parsed
	}

	sess.MountTeams()
	snap := sess.Teams.Snapshot()

	if r.URL.Query().Get("layout") == "selector" {
		view := newTeamsView(snap, "", "/partials/teams?layout=selector")
		view.SelectedTeam = sess.Players.Snapshot().Selection
		renderFragment(w, h.templates, "team-selector", view)
		return
	}

	poll := "/partials/teams"
	if league != "" {
		poll += "?league=" + string(league)
	}
	renderFragment(w, h.templates, "team-list", newTeamsView(snap, league, poll))
}

// TeamsFreshness renders the team directory "last updated" line
func (h *PartialsHandler) TeamsFreshness(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	renderFragment(w, h.templates, "freshness", FreshnessView{Snapshot: sess.TeamsFreshness.Snapshot()})
}

// Players renders the roster of the selected team
func (h *PartialsHandler) Players(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	renderFragment(w, h.templates, "players", newPlayersView(sess.Players.Snapshot()))
}

// PlayerDetail renders one player's key/value card
func (h *PartialsHandler) PlayerDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "player id required", http.StatusBadRequest)
		return
	}

	rec, err := h.players.Player(r.Context(), id)
	if err != nil {
		h.log.Warn().Err(err).Str("player", id).Msg("player detail fetch failed")
		// HTMX only swaps 2xx responses, so failures are rendered as a banner
		msg := "選手情報の取得に失敗しました: " + err.Error()
		if errors.Is(err, npbapi.ErrNotFound) {
			msg = "選手が見つかりません"
		}
		renderFragment(w, h.templates, "player-detail", PlayerView{Error: msg})
		return
	}

	renderFragment(w, h.templates, "player-detail", PlayerView{Fields: rec.Fields()})
}

// Stats renders the stats view, loading the default selection on first
// display
func (h *PartialsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sess.MountStats()
	renderFragment(w, h.templates, "stats-view", newStatsView(sess.Stats.Snapshot()))
}

// StatsFreshness renders the stats "last updated" line
func (h *PartialsHandler) StatsFreshness(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	renderFragment(w, h.templates, "freshness", FreshnessView{Snapshot: sess.StatsFreshness.Snapshot()})
}

// renderFragment renders a page's content template without the layout
func renderFragment(w http.ResponseWriter, templates *web.TemplateEngine, page string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.RenderContent(w, page, data); err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}
