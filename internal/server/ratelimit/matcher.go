package ratelimit

import (
	"strings"
)

// unlimited marks an endpoint as exempt from rate limiting.
var unlimited = EndpointConfig{Limit: 0}

// MatchEndpoint matches a request path and method to an endpoint
// configuration, or nil when only the default limit applies. Exact matches
// win over prefix matches; paths ending in "/" match by prefix.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks and logo fetches are never limited: the former is
	// hammered by orchestrators, the latter by browsers rendering lists.
	if path == "/health" && method == "GET" {
		return &unlimited
	}
	if method == "GET" && strings.HasPrefix(path, "/job-logos/") {
		return &unlimited
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") &&
			strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
