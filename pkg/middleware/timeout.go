package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "fieldnorm/pkg/errors"
	httputil "fieldnorm/pkg/http"
)

// timeoutWriter buffers the handler's response. Nothing reaches the real
// writer until the handler returns, so a late handler never touches it.
type timeoutWriter struct {
	header      http.Header
	body        bytes.Buffer
	mu          sync.Mutex
	timedOut    bool
	wroteHeader bool
	statusCode  int
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.statusCode = code
	tw.wroteHeader = true
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.statusCode = http.StatusOK
		tw.wroteHeader = true
	}
	return tw.body.Write(b)
}

// flushTo copies the buffered response to w. Called once the handler has
// returned.
func (tw *timeoutWriter) flushTo(w http.ResponseWriter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	dst := w.Header()
	for k, vv := range tw.header {
		dst[k] = vv
	}
	if !tw.wroteHeader {
		tw.statusCode = http.StatusOK
	}
	w.WriteHeader(tw.statusCode)
	_, _ = w.Write(tw.body.Bytes())
}

// RequestTimeout bounds the request context and answers 504 when the handler
// has not returned by the deadline. Panics in the handler are re-raised on
// the serving goroutine so Recovery still sees them.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{header: make(http.Header)}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				tw.flushTo(w)
			case <-ctx.Done():
				tw.mu.Lock()
				tw.timedOut = true
				tw.mu.Unlock()
				httputil.WriteError(w, apperrors.Timeout("Request timed out"))
			}
		})
	}
}
