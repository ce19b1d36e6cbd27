package restapi

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key carrying the request's correlation ID.
const RequestIDKey contextKey = "request_id"

const maxRequestIDLength = 128

var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-._:]+$`)

// RequestIDMiddleware tags every request with a correlation ID: the
// caller's X-Request-ID when it is well formed, a fresh UUID otherwise.
// The ID is echoed on the response and threaded through the context so the
// request log can carry it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if !acceptableRequestID(reqID) {
			reqID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// acceptableRequestID bounds caller-supplied IDs so log lines stay clean.
func acceptableRequestID(id string) bool {
	return id != "" && len(id) <= maxRequestIDLength && requestIDPattern.MatchString(id)
}

// GetRequestID returns the correlation ID stored by RequestIDMiddleware,
// or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
