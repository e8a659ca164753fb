package errutil_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
)

func TestHTTPRequestFlawPayloadRedactsAuthorization(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest(http.MethodGet, "https://api.music.yandex.net/account/status", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "OAuth secret")
	req.Header.Set("User-Agent", "test")

	p := errutil.HTTPRequestFlawPayload(req)
	headers, ok := p["headers"].(flaw.P)
	require.True(t, ok)
	assert.Equal(t, "<redacted>", headers["Authorization"])
	assert.Equal(t, []string{"test"}, headers["User-Agent"])
	assert.Equal(t, "GET", p["method"])
}

func TestIsFlaw(t *testing.T) {
	t.Parallel()

	assert.True(t, errutil.IsFlaw(flaw.From(errors.New("boom"))))
	assert.True(t, errutil.IsFlaw(fmt.Errorf("wrapped: %w", flaw.From(errors.New("boom")))))
	assert.False(t, errutil.IsFlaw(errors.New("plain")))
}

func TestFlawToYAML(t *testing.T) {
	t.Parallel()

	f := flaw.From(errors.New("boom")).Append(flaw.P{"track_id": "42"})
	b, err := errutil.FlawToYAML(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), "inner: boom")
	assert.Contains(t, string(b), "track_id")
}
