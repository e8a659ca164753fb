package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/yamusic/yandex"
)

func TestTrackID(t *testing.T) {
	t.Parallel()

	for arg, expected := range map[string]yandex.ID{
		"10994777":         "10994777",
		" 10994777 ":       "10994777",
		"10994777:1204427": "10994777",
		"https://music.yandex.ru/album/1204427/track/10994777": "10994777",
		"https://music.yandex.com/track/10994777":              "10994777",
	} {
		id, err := trackID(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, expected, id, arg)
	}

	for _, arg := range []string{"", "a b", "https://music.yandex.ru/album/1204427", "1:2:3"} {
		_, err := trackID(arg)
		require.Error(t, err, arg)
	}
}

func TestTrackIDsDeduplicates(t *testing.T) {
	t.Parallel()

	ids, err := trackIDs([]string{"1", "1:5", "2"})
	require.NoError(t, err)
	assert.Equal(t, []yandex.ID{"1", "2"}, ids)

	_, err = trackIDs(nil)
	require.Error(t, err)
}

func TestDownloadTarget(t *testing.T) {
	t.Parallel()

	link, err := downloadTarget("https://music.yandex.ru/users/music-blog/playlists/2069", yandex.KindTrack)
	require.NoError(t, err)
	assert.Equal(t, yandex.KindPlaylist, link.Kind)
	assert.Equal(t, yandex.PlaylistKey{Owner: "music-blog", Kind: 2069}, link.PlaylistKey())

	link, err = downloadTarget("music-blog:2069", yandex.KindPlaylist)
	require.NoError(t, err)
	assert.Equal(t, yandex.PlaylistKey{Owner: "music-blog", Kind: 2069}, link.PlaylistKey())

	link, err = downloadTarget("1204427", yandex.KindAlbum)
	require.NoError(t, err)
	assert.Equal(t, yandex.Link{Kind: yandex.KindAlbum, ID: "1204427"}, link) //nolint:exhaustruct

	link, err = downloadTarget("10994777", yandex.KindTrack)
	require.NoError(t, err)
	assert.Equal(t, yandex.ID("10994777"), link.ID)

	_, err = downloadTarget("music-blog:x", yandex.KindPlaylist)
	require.Error(t, err)
	_, err = downloadTarget("1/2", yandex.KindArtist)
	require.Error(t, err)
}

func TestPrintEntriesKeepsPositions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printEntries(&buf, []yandex.PlaylistEntry{
		{ID: "1", Track: &yandex.Track{Title: "A"}}, //nolint:exhaustruct
		{ID: "2"}, //nolint:exhaustruct
		{ID: "3", Track: &yandex.Track{Title: "C"}}, //nolint:exhaustruct
	})
	assert.Equal(t, "    0. A\n    1. <track 2 unavailable>\n    2. C\n", buf.String())
}
