package core

import "context"

type clientKey struct{}

// Client identifies who started an import.
type Client struct {
	IP        string
	UserAgent string
}

// WithClient attaches c to ctx. Import history records c.IP.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFromContext returns the client attached by WithClient, or the zero
// Client for imports started outside a request.
func ClientFromContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}
