package gymdesk

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a correlation id to ctx. Audit events emitted by operations
// running under ctx carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
