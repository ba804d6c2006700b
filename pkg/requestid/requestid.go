// Package requestid carries the inbound request id through a context so it
// can be forwarded on outbound calls.
package requestid

import "context"

const Header = "X-Request-ID"

type contextKey struct{}

func With(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

func From(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
