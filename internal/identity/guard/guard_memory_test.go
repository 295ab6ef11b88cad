package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGuard_MarkAndCheck(t *testing.T) {
	g := NewInMemory()
	ctx := context.Background()

	marked, err := g.IsMarked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, marked)

	require.NoError(t, g.Mark(ctx, "u1"))

	marked, err = g.IsMarked(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, marked)

	// Other subjects are unaffected.
	marked, err = g.IsMarked(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, marked)
}

func TestInMemoryGuard_WindowExpiry(t *testing.T) {
	now := time.Now()
	g := NewInMemory(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, g.Mark(ctx, "u1"))

	// Just inside the window.
	now = now.Add(10*time.Minute - time.Second)
	marked, err := g.IsMarked(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, marked)

	// One second past the window: marker expires and is cleared.
	now = now.Add(2 * time.Second)
	marked, err = g.IsMarked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, marked)

	// Cleared for good, not just reported expired.
	now = now.Add(-5 * time.Minute)
	marked, err = g.IsMarked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, marked)
}

func TestInMemoryGuard_Clear(t *testing.T) {
	g := NewInMemory()
	ctx := context.Background()

	require.NoError(t, g.Mark(ctx, "u1"))
	require.NoError(t, g.Clear(ctx, "u1"))

	marked, err := g.IsMarked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, marked)
}

func TestInMemoryGuard_CustomWindow(t *testing.T) {
	now := time.Now()
	g := NewInMemory(WithWindow(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, g.Mark(ctx, "u1"))
	now = now.Add(61 * time.Second)

	marked, err := g.IsMarked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, marked)
}
