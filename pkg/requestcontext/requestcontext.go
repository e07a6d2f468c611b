// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them. Keeping
// this package free of net/http lets domain code import only what it needs.
//
// The request time accessor is load-bearing for evidence packs: pack hashes
// include the generation timestamp, so tests freeze it with WithTime to get
// reproducible hashes.
package requestcontext

import (
	"context"
	"time"

	id "dossier/pkg/domain"
)

type (
	requesterKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	userAgentKey   struct{}
	clientIPKey    struct{}
)

// WithRequester stores the authenticated requester.
func WithRequester(ctx context.Context, r id.Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// Requester returns the authenticated requester, or the zero value when the
// request is anonymous.
func Requester(ctx context.Context) id.Requester {
	r, _ := ctx.Value(requesterKey{}).(id.Requester)
	return r
}

// WithRequestID stores the correlation ID for the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation ID, or "" when unset.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTime freezes the request time. Middleware sets this once per request;
// tests set it to a fixture instant.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the frozen request time, falling back to wall clock when no
// middleware ran (CLI paths, background jobs).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithUserAgent stores the raw User-Agent header.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// UserAgent returns the raw User-Agent header, or "".
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithClientIP stores the remote client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the remote client IP, or "".
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}
