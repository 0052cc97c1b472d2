package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}
type claimIDKey struct{}

// WithRequestID stores the inbound request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// WithClaimID stores the claim currently being calculated.
func WithClaimID(ctx context.Context, claimID string) context.Context {
	claimID = strings.TrimSpace(claimID)
	if ctx == nil || claimID == "" {
		return ctx
	}
	return context.WithValue(ctx, claimIDKey{}, claimID)
}

func ClaimIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(claimIDKey{}).(string)
	return value
}
