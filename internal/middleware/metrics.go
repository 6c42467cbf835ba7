package middleware

import (
	"net/http"
	"time"

	"blog-platform/internal/utils"

	"github.com/gorilla/mux"
)

// Metrics records request counts and latency labelled by route template.
// It must be installed with mux.Router.Use so the matched route is known.
func Metrics(mc *utils.MetricsCollector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			mc.ObserveRequest(r.Method, route, rec.status, time.Since(start))
			if rec.status >= http.StatusInternalServerError {
				mc.IncrementErrors()
			}
		})
	}
}
