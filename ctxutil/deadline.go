package ctxutil

import (
	"context"
	"time"
)

// WithGrace returns a context that is canceled grace after parent is done, so
// that a request already on the wire, such as a playlist edit, can complete
// after an interrupt. Values of parent are kept.
func WithGrace(parent context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		time.AfterFunc(grace, cancel)
	})
	return ctx, func() {
		stop()
		cancel()
	}
}
