package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"servease/backend/internal/server/httpx"
)

// BlocklistChecker answers IP and email blocklist queries.
type BlocklistChecker interface {
	IsIPBlacklisted(ctx context.Context, ip string) (bool, error)
	IsEmailBlocked(ctx context.Context, email string) (bool, error)
}

// BlockIPs rejects requests whose client IP is blacklisted with 403.
func BlockIPs(checker BlocklistChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked, err := checker.IsIPBlacklisted(r.Context(), ClientIPFromRequest(r))
			if err != nil {
				httpx.WriteInternal(w, r, err)
				return
			}
			if blocked {
				httpx.WriteError(w, http.StatusForbidden, "Access denied from this IP address")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BlockEmails peeks at the JSON body's email field and rejects blocked addresses with 403.
// The body is restored for the handler.
func BlockEmails(checker BlocklistChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := peekEmail(r)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "malformed request body")
				return
			}
			if email != "" {
				blocked, err := checker.IsEmailBlocked(r.Context(), email)
				if err != nil {
					httpx.WriteInternal(w, r, err)
					return
				}
				if blocked {
					httpx.WriteError(w, http.StatusForbidden, "This email address is blocked")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EmailKey is a throttle key for routes that act on one account: the lower-cased body
// email, or the client IP when the body has none.
func EmailKey(r *http.Request) string {
	if email, err := peekEmail(r); err == nil && email != "" {
		return "email:" + email
	}
	return "ip:" + ClientIPFromRequest(r)
}

// peekEmail reads the JSON body's email field, lower-cased, and restores the body.
func peekEmail(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	var peek struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &peek) != nil {
		return "", nil
	}
	return strings.ToLower(strings.TrimSpace(peek.Email)), nil
}
