package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/parser"
	"github.com/fredcamaral/patterndeck/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/patterndeck/internal/content"
	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
	"github.com/fredcamaral/patterndeck/internal/domain/services"
	"github.com/fredcamaral/patterndeck/internal/metrics"
	"github.com/fredcamaral/patterndeck/internal/test/builders"
)

// presenterFunc adapts a function to ports.Presenter
type presenterFunc func(ctx context.Context, page ports.Page) error

func (f presenterFunc) Run(ctx context.Context, page ports.Page) error {
	return f(ctx, page)
}

func getTestConfig() *entities.Config {
	return builders.NewConfigBuilder().Build()
}

func newTestServer(t *testing.T, presenter ports.Presenter, opts ...Option) *Server {
	t.Helper()

	cfg := getTestConfig()
	r, err := renderer.NewRenderer(renderer.PageOptions{
		RevealURL:       cfg.Presentation.GetRevealURL(),
		Theme:           cfg.Presentation.GetTheme(),
		AllowUnsafeHTML: cfg.Presentation.UnsafeHTMLAllowed(),
		SyncURL:         "/ws",
	})
	require.NoError(t, err)

	if presenter == nil {
		presenter = services.NewEntrypoint(nil)
	}

	s := NewServer(presenter, r, cfg, opts...)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNewServer_NilConfigPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewServer(services.NewEntrypoint(nil), nil, nil)
	})
}

func TestServer_Presentation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Abstract Factory Pattern</title>")
	assert.Contains(t, body, `class="page layout-wide"`)
	assert.Contains(t, body, `"slideNumber":"c/t"`)
	assert.Contains(t, body, `"transition":"slide"`)
	assert.Contains(t, body, "https://unpkg.com/reveal.js@5.1.0/dist/reveal.js")

	sections, err := parser.ParseSections(body)
	require.NoError(t, err)
	require.Len(t, sections, content.SlideCount)
	assert.Equal(t, content.DeckTitle, sections[0].Heading)
	assert.Equal(t, "#2d3436", sections[0].Background)

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "https://unpkg.com")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestServer_PresentationFreshPagePerLoad(t *testing.T) {
	var runs int32
	entrypoint := services.NewEntrypoint(nil)
	s := newTestServer(t, presenterFunc(func(ctx context.Context, page ports.Page) error {
		atomic.AddInt32(&runs, 1)
		return entrypoint.Run(ctx, page)
	}))

	for i := 0; i < 3; i++ {
		rec := doRequest(t, s, http.MethodGet, "/")
		require.Equal(t, http.StatusOK, rec.Code, "load %d", i+1)
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&runs))
}

func TestServer_PresentationError(t *testing.T) {
	m := metrics.New()
	s := newTestServer(t, presenterFunc(func(context.Context, ports.Page) error {
		return errors.New("secret internal detail")
	}), WithMetrics(m))

	rec := doRequest(t, s, http.MethodGet, "/")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Message)
	assert.NotContains(t, rec.Body.String(), "secret")

	scrapeRec := doRequest(t, s, http.MethodGet, "/metrics")
	assert.Contains(t, scrapeRec.Body.String(), `deck_renders_total{result="error"} 1`)
}

func TestServer_HeadPresentation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodHead, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestServer_Slides(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/slides")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SlidesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, content.PageTitle, resp.Title)
	assert.Equal(t, "wide", resp.Layout)
	assert.Equal(t, content.SlideCount, resp.SlideCount)
	require.Len(t, resp.Slides, content.SlideCount)
	assert.Equal(t, content.DeckTitle, resp.Slides[0].Title)
	assert.Equal(t, "#2d3436", resp.Slides[0].Background)
	assert.Equal(t, "#2d3436", resp.Slides[9].Background)
	assert.Empty(t, resp.Slides[1].Background)

	for _, slide := range resp.Slides {
		assert.NotContains(t, slide.HTML, "style=", "slide %d", slide.Index)
	}
}

func TestServer_SlidesWithoutContent(t *testing.T) {
	s := newTestServer(t, presenterFunc(func(ctx context.Context, page ports.Page) error {
		return page.SetPageConfig(entities.PageConfig{Title: "Empty", Layout: entities.LayoutWide})
	}))

	rec := doRequest(t, s, http.MethodGet, "/api/slides")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Config(t *testing.T) {
	s := newTestServer(t, nil, WithVersion("1.2.3"))

	rec := doRequest(t, s, http.MethodGet, "/api/config")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "white", resp.Theme)
	assert.Equal(t, "/ws", resp.WebSocketURL)
	assert.True(t, resp.AllowUnsafeHTML)
	assert.Equal(t, content.Page(), resp.Page)
	assert.Equal(t, content.Display(), resp.Display)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.Clients)
}

func TestServer_RateLimitKeysOnPeerAddress(t *testing.T) {
	cfg := builders.NewConfigBuilder().WithRate(0.001, 2).Build()
	s := NewServer(services.NewEntrypoint(nil), nil, cfg)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.8:40000"
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestServer_Metrics(t *testing.T) {
	t.Run("served when enabled", func(t *testing.T) {
		s := newTestServer(t, nil, WithMetrics(metrics.New()))

		require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/").Code)

		body := doRequest(t, s, http.MethodGet, "/metrics").Body.String()
		assert.Contains(t, body, `deck_renders_total{result="ok"} 1`)
		assert.Contains(t, body, `http_requests_total{method="GET",route="/",status="200"} 1`)
	})

	t.Run("absent when disabled", func(t *testing.T) {
		s := newTestServer(t, nil)
		assert.Equal(t, http.StatusNotFound, doRequest(t, s, http.MethodGet, "/metrics").Code)
	})
}

func TestServer_RoutingErrors(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("unknown path", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/nope")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Resource not found")
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/slides")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), "Method not allowed")
	})
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:8501", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	assert.False(t, s.IsRunning())
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(ctx), "second start must fail")

	resp, err := http.Get(s.URL() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `"status":"ok"`))

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	assert.Error(t, s.Stop(ctx), "stopping twice must fail")
	assert.Error(t, s.Start(ctx), "a stopped server cannot restart")
}

func TestServer_StartPortInUse(t *testing.T) {
	first := newTestServer(t, nil)
	require.NoError(t, first.Start(context.Background()))

	addr := strings.TrimPrefix(first.URL(), "http://")
	_, port, _ := strings.Cut(addr, ":")

	cfg := builders.NewConfigBuilder().WithPort(mustAtoi(t, port)).Build()
	second := NewServer(services.NewEntrypoint(nil), nil, cfg)
	t.Cleanup(func() { _ = second.Stop(context.Background()) })

	err := second.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
