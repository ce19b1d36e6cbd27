package restapi

import (
	"fmt"
	"net/http"
)

// noStoreValue marks responses that must never be cached: the realtime
// tier, and every error regardless of tier.
const noStoreValue = "no-cache, no-store, must-revalidate"

// CacheControlMiddleware stamps successful responses with the tier's
// Cache-Control value. Zero durationSeconds is the realtime tier (vehicle
// positions go stale within seconds); positive values suit the slower
// reference data like routes and config.
func CacheControlMiddleware(durationSeconds int, next http.Handler) http.Handler {
	tierValue := noStoreValue
	if durationSeconds > 0 {
		tierValue = fmt.Sprintf("public, max-age=%d", durationSeconds)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheHeaderWriter{ResponseWriter: w, tierValue: tierValue}, r)
	})
}

// cacheHeaderWriter defers the Cache-Control decision until the status
// code is known: only 2xx responses get the tier's value.
type cacheHeaderWriter struct {
	http.ResponseWriter
	tierValue string
	wrote     bool
}

func (w *cacheHeaderWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		value := noStoreValue
		if code >= 200 && code < 300 {
			value = w.tierValue
		}
		w.Header().Set("Cache-Control", value)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheHeaderWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
