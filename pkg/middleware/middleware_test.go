package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "fieldnorm/pkg/errors"
	httputil "fieldnorm/pkg/http"
	"fieldnorm/pkg/logger"
	"fieldnorm/pkg/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return body.Code
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if code := decodeCode(t, rec); code != apperrors.CodeInternal {
		t.Errorf("code = %s", code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("panic value leaked to client")
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if seen == "" {
			t.Fatal("expected a request ID in context")
		}
		if rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("response header %q != context %q", rec.Header().Get(RequestIDHeader), seen)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "abc-123" {
			t.Errorf("request ID = %q, want abc-123", seen)
		}
	})
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Nop())(okHandler())

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json", http.MethodPost, "{}", "application/json", http.StatusOK},
		{"json with charset", http.MethodPost, "{}", "Application/JSON; charset=utf-8", http.StatusOK},
		{"text", http.MethodPost, "{}", "text/plain", http.StatusUnsupportedMediaType},
		{"missing", http.MethodPost, "{}", "", http.StatusUnsupportedMediaType},
		{"empty body", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	if rec.Code != http.StatusOK {
		t.Errorf("small body status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too large")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("declared large body status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too large"))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("undeclared large body status = %d", rec.Code)
	}
}

func TestRequestTimeout(t *testing.T) {
	t.Run("slow handler", func(t *testing.T) {
		h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusGatewayTimeout {
			t.Errorf("status = %d, want 504", rec.Code)
		}
		if code := decodeCode(t, rec); code != apperrors.CodeTimeout {
			t.Errorf("code = %s", code)
		}
	})

	t.Run("fast handler", func(t *testing.T) {
		h := RequestTimeout(time.Second)(okHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("late handler writes stay off the response", func(t *testing.T) {
		finished := make(chan struct{})
		h := RequestTimeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer close(finished)
			<-r.Context().Done()
			w.Header().Set("X-Late", "1")
			httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": "x"})
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		<-finished

		if rec.Code != http.StatusGatewayTimeout {
			t.Errorf("status = %d, want 504", rec.Code)
		}
		if rec.Header().Get("X-Late") != "" {
			t.Error("header set after the deadline leaked into the response")
		}
		if code := decodeCode(t, rec); code != apperrors.CodeTimeout {
			t.Errorf("code = %s", code)
		}
	})

	t.Run("buffered response is copied", func(t *testing.T) {
		h := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Test", "yes")
			httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": "x"})
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d, want 201", rec.Code)
		}
		if rec.Header().Get("X-Test") != "yes" || rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("headers = %v", rec.Header())
		}
		if !strings.Contains(rec.Body.String(), `"id":"x"`) {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("handler without writes answers 200", func(t *testing.T) {
		h := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("panic reaches recovery", func(t *testing.T) {
		h := Recovery(logger.Nop())(RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("inner")
		})))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestClientRateLimiter(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Minute, nil, logger.Nop())
	defer limiter.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("third request inside the window should be rejected")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("other clients have their own bucket")
	}
	if !limiter.Allow("") {
		t.Error("empty key bypasses the limiter")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("10.0.0.1") {
		t.Error("request after the window should pass")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, nil, logger.Nop())
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestClientIPExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIPExtractor(req); got != "192.0.2.1" {
		t.Errorf("got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	if got := ClientIPExtractor(req); got != "192.0.2.1" {
		t.Errorf("forwarded header should be ignored, got %q", got)
	}
}

func TestForwardedClientIPExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ForwardedClientIPExtractor(req); got != "192.0.2.1" {
		t.Errorf("got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	if got := ForwardedClientIPExtractor(req); got != "203.0.113.9" {
		t.Errorf("got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " , 10.0.0.1")
	if got := ForwardedClientIPExtractor(req); got != "192.0.2.1" {
		t.Errorf("empty first hop should fall back, got %q", got)
	}
}

func TestSignatureVerification(t *testing.T) {
	const secret = "s3cret"
	var gotBody string
	h := SignatureVerification(secret, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))

	body := `{"text":"a"}`
	valid := signForTest(body, secret)

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"valid prefixed", http.MethodPost, "sha256=" + valid, http.StatusOK},
		{"valid bare", http.MethodPost, valid, http.StatusOK},
		{"valid uppercase", http.MethodPost, strings.ToUpper(valid), http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusUnauthorized},
		{"wrong", http.MethodPost, "sha256=deadbeef", http.StatusUnauthorized},
		{"get skips", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBody = ""
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(body))
			if tt.header != "" {
				req.Header.Set(SignatureHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && tt.method == http.MethodPost && gotBody != body {
				t.Errorf("body not restored: %q", gotBody)
			}
		})
	}
}

func TestIdempotency(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"n":` + string(rune('0'+n)) + `}`))
	}))

	send := func(method, path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send(http.MethodPost, "/api/v1/records", "k1")
	second := send(http.MethodPost, "/api/v1/records", "k1")

	if calls.Load() != 1 {
		t.Fatalf("handler calls = %d, want 1", calls.Load())
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay mismatch: %d %q vs %q", second.Code, second.Body.String(), first.Body.String())
	}
	if second.Header().Get(IdempotencyReplayedHeader) != "true" {
		t.Error("replayed response should be marked")
	}

	send(http.MethodPost, "/api/v1/ids", "k1")
	send(http.MethodPost, "/api/v1/records", "")
	send(http.MethodGet, "/api/v1/records", "k1")
	if calls.Load() != 4 {
		t.Errorf("handler calls = %d, want 4", calls.Load())
	}
}

func TestMetricsMiddleware(t *testing.T) {
	router := httprouter.New()
	router.GET("/api/v1/records/:id", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNotFound)
	})

	m := metrics.New(nil)
	h := Metrics(m, RouterRoutes(router))(router)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/records/abc", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/records/:id", "404")); got != 1 {
		t.Errorf("route counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", unmatchedRoute, "404")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
}

func signForTest(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}
