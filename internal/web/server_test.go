package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, cfg *Config, hub *Hub) *Server {
	t.Helper()
	srv := NewServer(cfg, hub)
	go func() { _ = srv.Start() }()
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	require.Eventually(t, func() bool {
		if srv.Addr() == nil {
			return false
		}
		resp, err := http.Get(srv.BaseURL() + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	return srv
}

func TestServer_Starts(t *testing.T) {
	startServer(t, &Config{Port: 0}, nil)
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv := NewServer(&Config{Port: 0}, nil)
	require.NoError(t, srv.Stop(context.Background()))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept serving after Stop")
	}
}

func TestServer_ServesStatic(t *testing.T) {
	cssContent := "body { background: #fff; }"
	static := fstest.MapFS{
		"css/style.css": {Data: []byte(cssContent)},
		"js/ws.js":      {Data: []byte("console.log('ws')")},
	}

	srv := startServer(t, &Config{Port: 0, Static: static}, nil)

	resp, err := http.Get(srv.BaseURL() + "/static/css/style.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, cssContent, string(body))

	respJS, err := http.Get(srv.BaseURL() + "/static/js/ws.js")
	require.NoError(t, err)
	defer respJS.Body.Close()
	assert.Equal(t, http.StatusOK, respJS.StatusCode)
}

func TestServer_HealthEndpoint(t *testing.T) {
	srv := startServer(t, &Config{Port: 0, Version: "1.2.3"}, nil)

	resp, err := http.Get(srv.BaseURL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
}

func TestServer_WebSocketJoinsSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := startServer(t, &Config{Port: 0}, hub)

	u := url.URL{Scheme: "ws", Host: srv.Addr().String(), Path: "/ws"}
	header := http.Header{}
	header.Add("Cookie", SessionCookie+"=s-42")

	c, wsResp, err := websocket.DefaultDialer.Dial(u.String(), header)
	require.NoError(t, err)
	defer c.Close()
	if wsResp != nil && wsResp.Body != nil {
		defer wsResp.Body.Close()
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.SendTo("s-42", []byte(`{"type":"view.updated"}`))

	_ = c.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := c.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"view.updated"}`, string(msg))
}

type mockPagesHandler struct{}

func (h *mockPagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	if v, _ := r.Context().Value(sessionKey{}).(string); v != "" {
		_, _ = io.WriteString(w, "session:"+v)
	}
}
func (h *mockPagesHandler) Teams(w http.ResponseWriter, r *http.Request)   {}
func (h *mockPagesHandler) Summary(w http.ResponseWriter, r *http.Request) {}
func (h *mockPagesHandler) Stats(w http.ResponseWriter, r *http.Request)   {}

type sessionKey struct{}

func TestServer_RegisterPagesHandlerRunsSessionMiddleware(t *testing.T) {
	withSession := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), sessionKey{}, "abc")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	srv := NewServer(&Config{Session: withSession}, nil)
	srv.RegisterPagesHandler(&mockPagesHandler{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session:abc", w.Body.String())
}

func TestServer_MountAPIWithCORS(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})

	srv := NewServer(&Config{CORSAllowedOrigins: []string{"https://npb.example"}}, nil)
	srv.MountAPI(api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://npb.example")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://npb.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
