package middleware

import (
	"net/url"
	"strings"
)

// OriginAllowed reports whether a websocket handshake origin may connect.
// Requests without an Origin header come from non-browser clients and are
// allowed, as are localhost origins during development.
func OriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(strings.TrimRight(a, "/"), origin) {
			return true
		}
	}
	return false
}
