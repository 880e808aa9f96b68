package http

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type clientIPKey struct{}

// ClientIPOptions configures client IP extraction
type ClientIPOptions struct {
	// TrustedHops is the number of reverse proxies between the client and this
	// server. 0 ignores X-Forwarded-For, 1 takes the rightmost entry, 2 the
	// second from the end, and so on.
	TrustedHops int
}

// ClientIPWithOptions returns middleware that resolves the client IP once and
// stores it in the request context
func ClientIPWithOptions(opts ClientIPOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractClientIP(r, opts.TrustedHops)
			next.ServeHTTP(w, r.WithContext(withClientIP(r.Context(), ip)))
		})
	}
}

// extractClientIP returns the peer address unless the peer is a private or
// loopback proxy and trustedHops selects an entry from X-Forwarded-For.
// Forwarding headers that are not trusted are removed from the request.
func extractClientIP(r *http.Request, trustedHops int) string {
	if r.RemoteAddr == "" {
		return "0.0.0.0"
	}

	clientAddr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		clientAddr = r.RemoteAddr
	}

	ip := net.ParseIP(clientAddr)
	if ip == nil {
		return "0.0.0.0"
	}

	if trustedHops <= 0 || (!ip.IsPrivate() && !ip.IsLoopback()) {
		stripForwarded(r)
		return ip.String()
	}

	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		idx := len(parts) - trustedHops
		if idx < 0 {
			// fewer entries than proxies: fail closed
			stripForwarded(r)
			return ip.String()
		}
		if candidate := net.ParseIP(strings.TrimSpace(parts[idx])); candidate != nil {
			return candidate.String()
		}
	}

	return ip.String()
}

func stripForwarded(r *http.Request) {
	r.Header.Del("X-Forwarded-For")
	r.Header.Del("X-Forwarded-Proto")
	r.Header.Del("X-Real-IP")
}

func withClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// clientIPFromContext returns the resolved client IP, falling back to the peer
// address when the request did not pass through ClientIPWithOptions
func clientIPFromContext(r *http.Request) string {
	if ip, _ := r.Context().Value(clientIPKey{}).(string); ip != "" {
		return ip
	}
	return extractClientIP(r, 0)
}
