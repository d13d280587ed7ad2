package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/blockedby/npb-dashboard/internal/logger"
	"github.com/blockedby/npb-dashboard/internal/web"
)

// ExportHandler prints the session's stats view
type ExportHandler struct {
	templates *web.TemplateEngine
	pdf       PDFRenderer
	log       *logger.Logger
}

// NewExportHandler creates a new export handler. pdf may be nil, which
// disables the export.
func NewExportHandler(templates *web.TemplateEngine, pdf PDFRenderer) *ExportHandler {
	return &ExportHandler{
		templates: templates,
		pdf:       pdf,
		log:       logger.Get().Component("export"),
	}
}

// StatsPDF renders the current stats view as a PDF download
func (h *ExportHandler) StatsPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		http.Error(w, "PDF export is not available", http.StatusServiceUnavailable)
		return
	}

	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	snap := sess.Stats.Snapshot()
	if !snap.HasData {
		http.Error(w, "no stats loaded", http.StatusConflict)
		return
	}

	view := newStatsView(snap)
	if fresh := sess.StatsFreshness.Snapshot(); fresh.HasData {
		view.LastUpdated = fresh.Data.JADateTime()
	}

	var buf bytes.Buffer
	if err := h.templates.RenderContent(&buf, "stats-print", view); err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	pdf, err := h.pdf.PrintHTML(r.Context(), buf.String())
	if err != nil {
		h.log.Error().Err(err).Str("selection", snap.Selection.String()).Msg("pdf export failed")
		http.Error(w, "PDF export failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("npb-%s-%s.pdf", snap.Selection.View, snap.Selection.Stats)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	_, _ = w.Write(pdf)
}
