package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/hyroxcoach/internal/telemetry/metrics"
	"github.com/2beens/hyroxcoach/pkg"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a 500 with the tools' read-failure body.
// http.ErrAbortHandler is re-raised.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.WithFields(log.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
				}).Errorf("panic serving request: %v\n%s", rec, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteJSONResponse(w, http.StatusInternalServerError, map[string]any{
					"error":   true,
					"message": "Unable to process the request. Please try again.",
				})
			}()

			next.ServeHTTP(w, req)
		})
	}
}
