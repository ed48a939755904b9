package middleware

import (
	"net/http"
	"strings"
	"time"

	"fieldnorm/pkg/metrics"

	"github.com/julienschmidt/httprouter"
)

const unmatchedRoute = "unmatched"

// RouteResolver maps a request to a bounded route label.
type RouteResolver func(r *http.Request) string

// RouterRoutes labels requests with the httprouter pattern they match, so
// /api/v1/records/abc is reported as /api/v1/records/:id.
func RouterRoutes(router *httprouter.Router) RouteResolver {
	return func(r *http.Request) string {
		_, params, found := router.Lookup(r.Method, r.URL.Path)
		if !found {
			return unmatchedRoute
		}

		route := r.URL.Path
		for _, p := range params {
			route = strings.Replace(route, "/"+p.Value, "/:"+p.Key, 1)
		}
		return route
	}
}

// Metrics records request count and latency per method, route and status.
func Metrics(m *metrics.Metrics, resolve RouteResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			route := r.URL.Path
			if resolve != nil {
				route = resolve(r)
			}
			m.ObserveHTTPRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}
