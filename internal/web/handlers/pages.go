package handlers

import (
	"net/http"

	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/web"
)

// PagesHandler handles HTML page requests
type PagesHandler struct {
	templates *web.TemplateEngine
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(templates *web.TemplateEngine) *PagesHandler {
	return &PagesHandler{templates: templates}
}

// Home renders the team/player page
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home", map[string]interface{}{
		"Title":      "チーム/選手",
		"ActivePage": "home",
	})
}

// Teams renders the team directory page
func (h *PagesHandler) Teams(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "teams", map[string]interface{}{
		"Title":      "チーム情報",
		"ActivePage": "teams",
	})
}

// Summary renders the statistics summary page
func (h *PagesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "summary", map[string]interface{}{
		"Title":      "統計",
		"ActivePage": "summary",
	})
}

// Stats renders the stats page with the session's current selection
func (h *PagesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sel := models.DefaultStatsSelection
	if sess := SessionFrom(r.Context()); sess != nil {
		if snap := sess.Stats.Snapshot(); snap.Selection != (models.StatsSelection{}) {
			sel = snap.Selection
		}
	}

	h.render(w, r, "stats", map[string]interface{}{
		"Title":        "成績",
		"ActivePage":   "stats",
		"ViewOptions":  viewOptions(sel.View),
		"StatsOptions": statsOptions(sel.Stats),
	})
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, page string, data map[string]interface{}) {
	if r.Header.Get("HX-Request") == "true" {
		if err := h.templates.RenderContent(w, page, data); err != nil {
			http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := h.templates.Render(w, page, data); err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}
