package trace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanSequence(t *testing.T) {
	ctx := WithRequestAndSpan(context.Background(), "req-1", 0)
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "0", CurrentSpanID(ctx))

	rid, span := NextSpanID(ctx)
	assert.Equal(t, "req-1", rid)
	assert.Equal(t, "1", span)
	_, span = NextSpanID(ctx)
	assert.Equal(t, "2", span)
	assert.Equal(t, "2", CurrentSpanID(ctx))
}

func TestNextSpanIDConcurrent(t *testing.T) {
	ctx := WithRequestAndSpan(context.Background(), "req-2", 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			NextSpanID(ctx)
		}()
	}
	wg.Wait()
	assert.Equal(t, "50", CurrentSpanID(ctx))
}

func TestEnsureRequest(t *testing.T) {
	bare := context.Background()
	assert.Empty(t, RequestIDFromContext(bare))
	assert.Equal(t, "0", CurrentSpanID(bare))

	ctx := EnsureRequest(bare)
	id := RequestIDFromContext(ctx)
	assert.Len(t, id, 32)

	assert.Equal(t, ctx, EnsureRequest(ctx), "existing trace is kept")

	rid, span := NextSpanID(bare)
	assert.NotEmpty(t, rid)
	assert.Equal(t, "1", span)
}

func TestContinue(t *testing.T) {
	ctx := Continue(context.Background(), "upstream-id")
	assert.Equal(t, "upstream-id", RequestIDFromContext(ctx))
	assert.Equal(t, "0", CurrentSpanID(ctx))

	fresh := Continue(context.Background(), "")
	assert.Len(t, RequestIDFromContext(fresh), 32)
}
