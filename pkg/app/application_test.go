package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fieldnorm/pkg/client"
	"fieldnorm/pkg/config"
	apperrors "fieldnorm/pkg/errors"
	httputil "fieldnorm/pkg/http"
	"fieldnorm/pkg/logger"
	"fieldnorm/pkg/metrics"
	"fieldnorm/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct{}

func (echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/echo", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		httputil.WriteCreated(w, map[string]string{"ok": "yes"})
	})
	router.GET("/api/v1/items/:id", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		httputil.WriteSuccess(w, map[string]string{"id": ps.ByName("id")})
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func testConfig(secret string) *config.Config {
	return &config.Config{
		Port:                "8080",
		IngestSigningSecret: secret,
		RateLimitRequests:   100,
		RateLimitWindow:     time.Minute,
		RequestTimeout:      time.Second,
		IdempotencyTTL:      time.Minute,
		MaxRequestSize:      1024,
		ReadTimeout:         time.Second,
		WriteTimeout:        time.Second,
		IdleTimeout:         time.Second,
		ShutdownTimeout:     time.Second,
		MetricsEnabled:      true,
		Log:                 logger.Nop(),
		Client:              client.NewClient(),
	}
}

func newTestApp(t *testing.T, secret string, pinger stubPinger) *Application {
	t.Helper()
	a := NewApplication(testConfig(secret), metrics.New(nil))
	a.SetApp(echoHandler{}, pinger)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func serve(a *Application, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, r)
	return rec
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApp(t, "", stubPinger{})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/items/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec = serve(a, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/items/:id"`)
}

func TestApplication_UnknownRouteIsJSONNotFound(t *testing.T) {
	a := newTestApp(t, "", stubPinger{})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeNotFound)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestApplication_ReadyReportsPingFailure(t *testing.T) {
	a := newTestApp(t, "", stubPinger{err: errors.New("down")})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeUnavailable)
}

func TestApplication_SignatureEnabledWithSecret(t *testing.T) {
	a := newTestApp(t, "secret", stubPinger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(a, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SignatureHeader, "sha256="+client.Sign([]byte(`{}`), "secret"))
	rec = serve(a, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestApplication_RateLimitClientKey(t *testing.T) {
	get := func(a *Application, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil)
		req.Header.Set("X-Forwarded-For", forwardedFor)
		return serve(a, req).Code
	}

	for _, tt := range []struct {
		name       string
		trust      bool
		wantSecond int
	}{
		{"forwarded header ignored by default", false, http.StatusTooManyRequests},
		{"forwarded header trusted behind proxy", true, http.StatusOK},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("")
			cfg.RateLimitRequests = 1
			cfg.TrustProxyHeaders = tt.trust
			a := NewApplication(cfg, metrics.New(nil))
			a.SetApp(echoHandler{}, stubPinger{})
			defer a.idempotencyStore.Stop()
			defer a.rateLimiter.Stop()

			assert.Equal(t, http.StatusOK, get(a, "203.0.113.1"))
			assert.Equal(t, tt.wantSecond, get(a, "203.0.113.2"))
		})
	}
}

func TestApplication_MetricsDisabled(t *testing.T) {
	cfg := testConfig("")
	cfg.MetricsEnabled = false
	a := NewApplication(cfg, metrics.New(nil))
	a.SetApp(echoHandler{}, stubPinger{})
	defer a.idempotencyStore.Stop()
	defer a.rateLimiter.Stop()

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplication_WorkersStopOnShutdown(t *testing.T) {
	a := NewApplication(testConfig(""), metrics.New(nil))
	a.SetApp(echoHandler{}, stubPinger{})

	var stopped, closed, extraClosed atomic.Bool
	a.AddWorker("blocking", func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return ctx.Err()
	}, closerFunc(func() error {
		closed.Store(true)
		return nil
	}))
	a.AddCloser(closerFunc(func() error {
		extraClosed.Store(true)
		return nil
	}))

	a.startWorkers()
	a.gracefulShutdown()

	assert.True(t, stopped.Load())
	assert.True(t, closed.Load())
	assert.True(t, extraClosed.Load())
}

func TestApplication_WorkerFailureIsReported(t *testing.T) {
	a := NewApplication(testConfig(""), metrics.New(nil))
	a.SetApp(echoHandler{}, stubPinger{})
	defer a.idempotencyStore.Stop()
	defer a.rateLimiter.Stop()

	boom := errors.New("broker gone")
	a.AddWorker("failing", func(ctx context.Context) error { return boom }, nil)
	a.startWorkers()
	defer a.cancelWorkers()

	select {
	case err := <-a.workerErrors:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("worker failure not reported")
	}
}
