package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ResolveClientIP returns the address of the client as seen by the first trusted proxy.
// With trustedProxies <= 0 forwarding headers are ignored and the host of RemoteAddr is used.
// Otherwise the X-Forwarded-For entry trustedProxies places from the right is taken; entries
// left of it were written by the client and are not trusted.
func ResolveClientIP(r *http.Request, trustedProxies int) string {
	if trustedProxies > 0 {
		var hops []string
		for _, v := range r.Header.Values("X-Forwarded-For") {
			for _, h := range strings.Split(v, ",") {
				if h = strings.TrimSpace(h); h != "" {
					hops = append(hops, h)
				}
			}
		}
		if len(hops) > 0 {
			i := len(hops) - trustedProxies
			if i < 0 {
				i = 0
			}
			return hops[i]
		}
	}
	return remoteHost(r)
}

// ClientIPFromRequest returns the IP stored by ClientIP, else the host of RemoteAddr.
func ClientIPFromRequest(r *http.Request) string {
	if ip := GetClientIP(r.Context()); ip != "" {
		return ip
	}
	return remoteHost(r)
}

// ClientIP resolves the client IP once and stores it in the request context for the
// throttle, blocklist, logging and audit.
func ClientIP(trustedProxies int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ResolveClientIP(r, trustedProxies)
			next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
		})
	}
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
