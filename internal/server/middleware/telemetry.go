package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"servease/backend/internal/telemetry"
)

// requestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type requestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
	RequestID  string `json:"request_id,omitempty"`
}

// RequestEvents emits an http_request event after each request. Best-effort; if emitter is nil
// the middleware is a no-op. skipPaths are raw URL paths not to emit (e.g. /health).
func RequestEvents(emitter telemetry.EventEmitter, skipPaths map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if emitter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			// Inner middleware enrich the context (identity, tenant) and report it back through the holder.
			holder := &requestHolder{}
			next.ServeHTTP(ww, r.WithContext(withHolder(r.Context(), holder)))
			if skipPaths[r.URL.Path] {
				return
			}
			ctx := r.Context()
			if holder.r != nil {
				ctx = holder.r.Context()
			}
			meta := requestMetadata{
				Method:     r.Method,
				Route:      routePattern(r),
				StatusCode: ww.Status(),
				DurationMs: time.Since(start).Milliseconds(),
				ClientIP:   ClientIPFromRequest(r),
				RequestID:  chimw.GetReqID(r.Context()),
			}
			telemetry.EmitAsync(emitter, telemetry.NewEvent("http_request", "http_middleware",
				GetTenantID(ctx), GetUserID(ctx), meta))
		})
	}
}
