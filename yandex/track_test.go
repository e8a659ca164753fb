package yandex_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/yamusic/yandex"
)

func TestTrackProjection(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/tracks", jsonHandler(`[`+trackPayload+`]`))
	client := newTestClient(t, mux)

	track, err := client.Track(context.Background(), "10994777")
	require.NoError(t, err)

	var source struct {
		ID      yandex.ID `json:"id"`
		Title   string    `json:"title"`
		Artists []struct {
			ID   yandex.ID `json:"id"`
			Name string    `json:"name"`
		} `json:"artists"`
	}
	require.NoError(t, json.Unmarshal([]byte(trackPayload), &source))

	assert.Equal(t, source.ID, track.ID)
	assert.Equal(t, source.Title, track.Title)
	require.Len(t, track.Artists, len(source.Artists))
	for i, a := range source.Artists {
		assert.Equal(t, a.ID, track.Artists[i].ID)
		assert.Equal(t, a.Name, track.Artists[i].Name)
	}

	encoded, err := json.Marshal(track)
	require.NoError(t, err)
	var again yandex.Track
	require.NoError(t, json.Unmarshal(encoded, &again))
	assert.Equal(t, track.ID, again.ID)
	assert.Equal(t, track.Title, again.Title)
	assert.Equal(t, track.Artists[0].Name, again.Artists[0].Name)

	assert.Equal(t, 278950*time.Millisecond, track.Duration())
	assert.Equal(t, "Shape of My Heart - Sting", track.String())
	assert.Equal(t, "https://music.yandex.ru/album/1204427/track/10994777", track.URL())
	assert.Equal(t, "https://avatars.yandex.net/get-music-content/49707/4b1e1ef8.a.1204427-1/1080x1080", track.CoverURL(""))
	assert.Equal(t, "https://avatars.yandex.net/get-music-content/49707/4b1e1ef8.a.1204427-1/200x200", track.CoverURL("200x200"))
	require.NotNil(t, track.Major)
	assert.Equal(t, "UNIVERSAL_MUSIC", track.Major.Name)

	ref, err := track.Ref()
	require.NoError(t, err)
	assert.Equal(t, yandex.TrackRef{ID: "10994777", AlbumID: "1204427"}, ref)
}

func TestTrackWithoutAlbum(t *testing.T) {
	t.Parallel()

	track := &yandex.Track{ID: "5", Title: "Upload"}
	assert.Equal(t, "https://music.yandex.ru/track/5", track.URL())
	assert.Empty(t, track.CoverURL(""))
	_, err := track.Ref()
	require.ErrorIs(t, err, yandex.ErrInvalidTrackRef)
	assert.Equal(t, "Upload", track.String())
}

func TestJoinArtists(t *testing.T) {
	t.Parallel()

	artists := []*yandex.Artist{{Name: "Sting"}, nil, {Name: ""}, {Name: "Dominic Miller"}}
	assert.Equal(t, "Sting, Dominic Miller", yandex.JoinArtists(artists))
	assert.Empty(t, yandex.JoinArtists(nil))
}

func TestShortTrackResolveUsesCache(t *testing.T) {
	t.Parallel()

	var lookups atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/tracks", func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		jsonHandler(`[`+trackPayload+`]`)(w, r)
	})
	mux.HandleFunc("/account/status", accountHandler(new(atomic.Int32)))
	mux.HandleFunc("/users/100/likes/tracks", jsonHandler(`{"library":{"tracks":[{"id":"10994777","albumId":"1204427","timestamp":"2024-03-01T10:00:00+00:00"}]}}`))
	client := newTestClient(t, mux)
	ctx := context.Background()

	liked, err := client.LikedTracks(ctx)
	require.NoError(t, err)
	require.Len(t, liked, 1)

	first, err := liked[0].Resolve(ctx)
	require.NoError(t, err)
	second, err := liked[0].Resolve(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), lookups.Load())
}
