package upstream

import "context"

// RequestIDHeader correlates a dashboard request with the remote calls it fans out to.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID stores the inbound request id so every fetch forwards it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
