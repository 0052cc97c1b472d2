package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestAndClaimIDs(t *testing.T) {
	ctx := WithRequestID(context.Background(), "  req-1 ")
	ctx = WithClaimID(ctx, "claim-9")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "claim-9", ClaimIDFromContext(ctx))
}

func TestBlankValuesAreIgnored(t *testing.T) {
	ctx := WithRequestID(context.Background(), "   ")
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, ClaimIDFromContext(ctx))
}
