package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Route overrides for admin actions whose verb is not implied by the HTTP method.
var routeOverrides = map[string]ActionResource{
	"PATCH /admin/users/{id}/status": {Action: "status_changed", Resource: "user"},
	"PATCH /admin/kyc/{id}/approve":  {Action: "kyc_approved", Resource: "kyc"},
	"PATCH /admin/kyc/{id}/reject":   {Action: "kyc_rejected", Resource: "kyc"},
	"POST /admin/blacklist/ip":       {Action: "ip_blacklisted", Resource: "blacklist"},
	"POST /admin/block-email":        {Action: "email_blocked", Resource: "blocked_email"},
}

// ParseRoute returns action and resource for an HTTP method and chi route pattern
// (e.g. PATCH /api/v1/admin/roles/{id}). The version prefix is ignored.
// Action is get, list, create, update, or delete. Resource is the first static path segment,
// singularized (roles -> role).
func ParseRoute(method, pattern string) ActionResource {
	path := stripVersion(pattern)
	if ar, ok := routeOverrides[method+" "+path]; ok {
		return ar
	}
	var segments []string
	for _, s := range strings.Split(strings.Trim(path, "/"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	// /admin/<resource>/... audits the resource, not "admin".
	if segments[0] == "admin" && len(segments) > 1 {
		segments = segments[1:]
	}
	resource := singular(strings.ReplaceAll(segments[0], "-", "_"))
	last := segments[len(segments)-1]
	return ActionResource{Action: methodToAction(method, isParam(last)), Resource: resource}
}

func stripVersion(pattern string) string {
	p := strings.TrimPrefix(pattern, "/api")
	if len(p) > 2 && p[1] == 'v' && p[2] >= '0' && p[2] <= '9' {
		if i := strings.Index(p[1:], "/"); i >= 0 {
			return p[i+1:]
		}
	}
	return pattern
}

func isParam(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

func singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "ss"):
		return s
	case strings.HasSuffix(s, "s"):
		return strings.TrimSuffix(s, "s")
	}
	return s
}

func methodToAction(method string, byID bool) string {
	switch method {
	case http.MethodGet:
		if byID {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
