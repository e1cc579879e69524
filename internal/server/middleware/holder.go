package middleware

import (
	"context"
	"net/http"
)

var holderKey = contextKey{"request_holder"}

// requestHolder lets outer middleware see the request as enriched by inner middleware.
type requestHolder struct {
	r *http.Request
}

func withHolder(ctx context.Context, h *requestHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// capture records r as the latest enriched request, if an outer middleware asked for it.
func capture(r *http.Request) {
	if h, ok := r.Context().Value(holderKey).(*requestHolder); ok {
		h.r = r
	}
}
