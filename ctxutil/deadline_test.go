package ctxutil_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/yamusic/ctxutil"
)

type key struct{}

func TestWithGrace(t *testing.T) {
	t.Parallel()

	t.Run("OutlivesParent", func(t *testing.T) {
		t.Parallel()

		parent, parentCancel := context.WithCancel(context.WithValue(t.Context(), key{}, "v"))
		ctx, cancel := ctxutil.WithGrace(parent, 200*time.Millisecond)
		defer cancel()
		assert.Equal(t, "v", ctx.Value(key{}))

		parentCancel()
		select {
		case <-ctx.Done():
			require.Fail(t, "expected context to stay active during the grace period")
		case <-time.After(50 * time.Millisecond):
		}

		select {
		case <-ctx.Done():
			require.ErrorIs(t, ctx.Err(), context.Canceled)
		case <-time.After(2 * time.Second):
			require.Fail(t, "expected context to be canceled after the grace period")
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := ctxutil.WithGrace(t.Context(), time.Hour)
		cancel()
		select {
		case <-ctx.Done():
		default:
			require.Fail(t, "expected cancel to stop the context immediately")
		}
	})
}
