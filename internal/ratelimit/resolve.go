package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time // End of the current window.
}

// Limiter counts requests per key in one-second windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// Decision is the limit that applies to one request.
type Decision struct {
	Limit    int
	Route    string
	ClientIP string
}

// ResolveLimit returns the limit for route: a configured per-route override
// wins over the default limit. An override of 0 disables limiting for the route.
func ResolveLimit(settings Settings, route string) Decision {
	route = normalizeRoute(route)
	limit := settings.Limit
	if override, ok := settings.Routes[route]; ok {
		limit = override
	}
	return Decision{Limit: max(limit, 0), Route: route}
}

// KeyForDecision builds the limiter key for decision. An empty key means the
// request is not limited.
func KeyForDecision(decision Decision) string {
	if decision.Limit <= 0 || decision.ClientIP == "" {
		return ""
	}
	return "ip:" + decision.ClientIP + ":r:" + decision.Route
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}

// windowResult converts a window count, including the current request, into a Result.
func windowResult(count, limit int, reset time.Time) Result {
	return Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		Reset:     reset,
	}
}
