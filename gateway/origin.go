package gateway

import (
	"net/url"
	"strings"
)

// originPolicy decides which browser origins may open a websocket.
// Requests without an Origin header come from non-browser clients and are
// always let through.
type originPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	policy := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			policy.allowAll = true
			continue
		}
		if normalized, ok := normalizeOrigin(origin); ok {
			policy.allowed[normalized] = struct{}{}
		}
	}
	return policy
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" || p.allowAll {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	_, exists := p.allowed[normalized]
	return exists
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
