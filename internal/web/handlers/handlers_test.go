package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/logger"
	"github.com/blockedby/npb-dashboard/internal/models"
	"github.com/blockedby/npb-dashboard/internal/web"
	"github.com/blockedby/npb-dashboard/internal/web/assets"
)

// MockSource is a mock implementation of dashboard.Source and PlayerSource
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Statistics(ctx context.Context) (*models.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Statistics), args.Error(1)
}

func (m *MockSource) Teams(ctx context.Context) (*models.Teams, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Teams), args.Error(1)
}

func (m *MockSource) TeamsLastUpdated(ctx context.Context) (models.Timestamp, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Timestamp), args.Error(1)
}

func (m *MockSource) Players(ctx context.Context, teamID string) (models.RecordCollection, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.RecordCollection), args.Error(1)
}

func (m *MockSource) Player(ctx context.Context, playerID string) (*models.Record, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockSource) Stats(ctx context.Context, sel models.StatsSelection) (*models.StatsResult, error) {
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StatsResult), args.Error(1)
}

func (m *MockSource) LastUpdated(ctx context.Context) (models.Timestamp, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Timestamp), args.Error(1)
}

// MockPDFRenderer is a mock implementation of PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var statsUpdated = models.Timestamp{Time: time.Date(2024, 3, 2, 8, 30, 0, 0, time.Local)}

func rec(kv ...any) models.Record {
	r := models.NewRecord()
	for i := 0; i < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return *r
}

// testEnv is a running dashboard with a cookie-aware client
type testEnv struct {
	t      *testing.T
	srv    *httptest.Server
	mgr    *dashboard.Manager
	client *http.Client
}

func setupTestServer(t *testing.T, src *MockSource, pdf PDFRenderer) *testEnv {
	t.Helper()

	templates := web.NewTemplateEngineFS(assets.Templates(), false)
	require.NoError(t, templates.Load())

	mgr := dashboard.NewManager(src, dashboard.WithLogger(logger.Nop()))
	t.Cleanup(mgr.CloseAll)

	cfg := &web.Config{
		Static:  assets.Static(),
		Session: SessionMiddleware(mgr, 30*time.Minute),
	}
	server := web.NewServer(cfg, nil)
	server.RegisterPagesHandler(NewPagesHandler(templates))
	server.RegisterPartialsHandler(NewPartialsHandler(templates, src))
	server.RegisterActionsHandler(NewActionsHandler(templates))
	server.RegisterExportHandler(NewExportHandler(templates, pdf))

	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{t: t, srv: srv, mgr: mgr, client: &http.Client{Jar: jar}}
}

func (e *testEnv) do(req *http.Request) (int, string) {
	e.t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) get(path string) (int, string) {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(e.t, err)
	return e.do(req)
}

func (e *testEnv) htmx(path string) (int, string) {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(e.t, err)
	req.Header.Set("HX-Request", "true")
	return e.do(req)
}

func (e *testEnv) post(path string, form url.Values) (int, string) {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return e.do(req)
}

// session returns the dashboard session bound to the client's cookie
func (e *testEnv) session() *dashboard.Session {
	e.t.Helper()
	u, err := url.Parse(e.srv.URL)
	require.NoError(e.t, err)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == web.SessionCookie {
			sess, err := e.mgr.Get(c.Value)
			require.NoError(e.t, err)
			return sess
		}
	}
	e.t.Fatal("no session cookie")
	return nil
}
