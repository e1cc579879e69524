package httpx

import (
	"net/http"
	"strconv"
)

// Pagination reads limit and offset query params, clamping limit to [1, max] with def when absent.
func Pagination(r *http.Request, def, max int32) (limit, offset int32) {
	limit = def
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	if limit > max {
		limit = max
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}
	return limit, offset
}

// QueryFloat parses a float query param. ok is false when absent or invalid.
func QueryFloat(r *http.Request, name string) (float64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
