package handlers

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/npb-dashboard/internal/models"
)

func TestStatsPDF_Disabled(t *testing.T) {
	env := setupTestServer(t, new(MockSource), nil)

	status, _ := env.get("/export/stats.pdf")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestStatsPDF_NothingLoaded(t *testing.T) {
	env := setupTestServer(t, new(MockSource), new(MockPDFRenderer))

	status, _ := env.get("/export/stats.pdf")
	assert.Equal(t, http.StatusConflict, status)
}

func TestStatsPDF_PrintsCurrentView(t *testing.T) {
	src := new(MockSource)
	src.On("Stats", mock.Anything, models.DefaultStatsSelection).Return(battingResult(), nil)
	src.On("LastUpdated", mock.Anything).Return(statsUpdated, nil)

	pdf := new(MockPDFRenderer)
	pdf.On("PrintHTML", mock.Anything, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, "<h1>チーム成績 / 打撃成績</h1>") &&
			strings.Contains(html, "最終更新: 2024/3/2 8:30:00") &&
			strings.Contains(html, "<td>巨人</td>")
	})).Return([]byte("%PDF-1.4 test"), nil)

	env := setupTestServer(t, src, pdf)
	env.htmx("/partials/stats")
	env.session().Wait()

	resp, err := env.client.Get(env.srv.URL + "/export/stats.pdf")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="npb-team-batting.pdf"`, resp.Header.Get("Content-Disposition"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.4 test", string(body))
	pdf.AssertExpectations(t)
}
