package downloadinfo_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/yamusic/yandex/api"
	"github.com/xeptore/yamusic/yandex/downloadinfo"
)

const document = `<?xml version="1.0" encoding="utf-8"?>
<download-info><host>s123vla.storage.yandex.net</host><path>/rmusic/U2FsdGVk/abc</path><ts>0005f1a2b3c4</ts><region>-1</region><s>deadbeef</s></download-info>`

func TestSelect(t *testing.T) {
	t.Parallel()

	entries := []downloadinfo.Entry{
		{Codec: "mp3", BitrateInKbps: 128, DownloadInfoURL: "https://x/128"},
		{Codec: "mp3", BitrateInKbps: 320, DownloadInfoURL: "https://x/320"},
	}

	t.Run("ExactMatch", func(t *testing.T) {
		t.Parallel()
		e, err := downloadinfo.Select(entries, 320)
		require.NoError(t, err)
		assert.Equal(t, "https://x/320", e.DownloadInfoURL)
	})

	t.Run("NoNearestFallback", func(t *testing.T) {
		t.Parallel()
		_, err := downloadinfo.Select(entries, downloadinfo.DefaultBitrate)
		var bitrateErr *downloadinfo.BitrateNotFoundError
		require.True(t, errors.As(err, &bitrateErr))
		assert.Equal(t, 192, bitrateErr.Bitrate)
		assert.Equal(t, []int{128, 320}, bitrateErr.Available)
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		_, err := downloadinfo.Select(nil, 192)
		var bitrateErr *downloadinfo.BitrateNotFoundError
		require.True(t, errors.As(err, &bitrateErr))
	})
}

func TestSign(t *testing.T) {
	t.Parallel()

	sign := downloadinfo.Sign("/rmusic/U2FsdGVk/abc", "deadbeef")
	assert.Equal(t, "5c38e49c01f9a959428986790af6f9ca", sign)
	assert.Equal(t, sign, downloadinfo.Sign("/rmusic/U2FsdGVk/abc", "deadbeef"))
	assert.Equal(t, "95052b19f536dba0683177e69287ff3b", downloadinfo.Sign("/rmusic/U2FsdGVk/abc", "deadbeeg"))
	assert.NotEqual(t, sign, downloadinfo.Sign("/rmusic/U2FsdGVk/abd", "deadbeef"))
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		doc, err := downloadinfo.Parse([]byte(document))
		require.NoError(t, err)
		assert.Equal(t, "s123vla.storage.yandex.net", doc.Host)
		assert.Equal(t, "-1", doc.Region)
		assert.Equal(t,
			"https://s123vla.storage.yandex.net/get-mp3/5c38e49c01f9a959428986790af6f9ca/0005f1a2b3c4/rmusic/U2FsdGVk/abc",
			doc.Link(),
		)
	})

	t.Run("MissingFields", func(t *testing.T) {
		t.Parallel()
		_, err := downloadinfo.Parse([]byte(`<download-info><host>h</host></download-info>`))
		require.Error(t, err)
	})

	t.Run("NotXML", func(t *testing.T) {
		t.Parallel()
		_, err := downloadinfo.Parse([]byte(`{"result":[]}`))
		require.Error(t, err)
	})
}

func TestResolver(t *testing.T) {
	t.Parallel()

	var documentRequests atomic.Int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/tracks/10/download-info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":[
			{"codec":"mp3","gain":false,"preview":false,"downloadInfoUrl":"`+srv.URL+`/info/192","direct":false,"bitrateInKbps":192},
			{"codec":"mp3","gain":false,"preview":false,"downloadInfoUrl":"`+srv.URL+`/info/320","direct":false,"bitrateInKbps":320}
		]}`)
	})
	mux.HandleFunc("/info/320", func(w http.ResponseWriter, r *http.Request) {
		documentRequests.Add(1)
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, document)
	})

	client := api.NewHTTPClient("token", api.WithBaseURL(srv.URL))
	resolver := downloadinfo.NewResolver(client)

	link, err := resolver.Resolve(context.Background(), "10", 320)
	require.NoError(t, err)
	assert.Equal(t,
		"https://s123vla.storage.yandex.net/get-mp3/5c38e49c01f9a959428986790af6f9ca/0005f1a2b3c4/rmusic/U2FsdGVk/abc",
		link,
	)

	_, err = resolver.Resolve(context.Background(), "10", 320)
	require.NoError(t, err)
	assert.Equal(t, int32(2), documentRequests.Load())

	_, err = resolver.Resolve(context.Background(), "10", 128)
	var bitrateErr *downloadinfo.BitrateNotFoundError
	require.True(t, errors.As(err, &bitrateErr))

	_, err = resolver.Resolve(context.Background(), "11", 192)
	var notFound *api.NotFoundError
	require.True(t, errors.As(err, &notFound))
}
