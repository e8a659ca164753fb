package must_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/must"
)

func TestBeFlaw(t *testing.T) {
	t.Parallel()

	f := flaw.From(errors.New("failed to decode track"))
	assert.Same(t, f, must.BeFlaw(fmt.Errorf("tracks: %w", f)))

	assert.Panics(t, func() { must.BeFlaw(errors.New("plain")) })
}
