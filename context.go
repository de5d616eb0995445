package webauth

import "context"

type contextKey uint8

const clientIPKey contextKey = iota

// WithClientIP attaches the request's client IP to the context so audit
// events can carry it. Optional; events without an IP are still emitted.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
