package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/walletrecon/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for run logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// clientIP returns the request's client address without the port.
// RemoteAddr is already rewritten by TrustedRealIP for proxied requests.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
