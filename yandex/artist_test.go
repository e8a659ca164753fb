package yandex_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/yamusic/yandex"
)

func TestAlbumTracksFlattensVolumes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/albums", jsonHandler(`[{"id":1204427,"title":"Ten Summoner's Tales","trackCount":3}]`))
	mux.HandleFunc("/albums/1204427/with-tracks", jsonHandler(`{
		"id": 1204427, "title": "Ten Summoner's Tales", "trackCount": 3,
		"volumes": [
			[{"id": 1, "title": "One"}, {"id": 2, "title": "Two"}],
			[{"id": 3, "title": "Three"}]
		]
	}`))
	client := newTestClient(t, mux)
	ctx := context.Background()

	album, err := client.Album(ctx, "1204427")
	require.NoError(t, err)
	assert.Empty(t, album.Volumes)

	tracks, err := album.Tracks(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	for i, track := range tracks {
		assert.Equal(t, yandex.ID(strconv.Itoa(i+1)), track.ID)
		cached, ok := client.State().Track(track.ID)
		require.True(t, ok)
		assert.Same(t, track, cached)
	}
	assert.Empty(t, album.Volumes)
	assert.Equal(t, "https://music.yandex.ru/album/1204427", album.URL())
}

func TestArtistTracks(t *testing.T) {
	t.Parallel()

	const total = 5
	mux := http.NewServeMux()
	mux.HandleFunc("/artists", jsonHandler(`[{"id":613,"name":"Sting","cover":{"type":"from-artist-photos","uri":"avatars.yandex.net/get-music-content/613/%%"}}]`))
	mux.HandleFunc("/artists/613/tracks", func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)
		assert.Equal(t, "100", r.URL.Query().Get("page-size"))

		// Two tracks per page regardless of the requested size.
		var items []string
		for i := page * 2; i < min(total, page*2+2); i++ {
			items = append(items, fmt.Sprintf(`{"id":%d,"title":"T%d"}`, i, i))
		}
		jsonHandler(fmt.Sprintf(`{"pager":{"page":%d,"perPage":2,"total":%d},"tracks":[%s]}`, page, total, strings.Join(items, ",")))(w, r)
	})
	mux.HandleFunc("/artists/613/track-ids-by-rating", jsonHandler(`{"artist":{"id":613},"tracks":["10994777"]}`))
	mux.HandleFunc("/tracks", jsonHandler(`[`+trackPayload+`]`))
	mux.HandleFunc("/artists/613/direct-albums", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "year", r.URL.Query().Get("sort-by"))
		jsonHandler(`{"pager":{"page":0,"perPage":20,"total":1},"albums":[{"id":1204427,"title":"Ten Summoner's Tales"}]}`)(w, r)
	})
	mux.HandleFunc("/artists/613/brief-info", jsonHandler(`{
		"artist": {"id": 613, "name": "Sting"},
		"albums": [{"id": 1204427, "title": "Ten Summoner's Tales"}],
		"popularTracks": [`+trackPayload+`],
		"similarArtists": [{"id": 1, "name": "The Police"}],
		"lastReleaseIds": [1204427]
	}`))
	client := newTestClient(t, mux)
	ctx := context.Background()

	artist, err := client.Artist(ctx, "613")
	require.NoError(t, err)
	assert.Equal(t, "https://avatars.yandex.net/get-music-content/613/400x400", artist.AvatarURL("400x400"))

	all, err := artist.AllTracks(ctx)
	require.NoError(t, err)
	require.Len(t, all, total)
	for i, track := range all {
		assert.Equal(t, yandex.ID(strconv.Itoa(i)), track.ID)
	}

	rated, err := artist.RatingTracks(ctx)
	require.NoError(t, err)
	require.Len(t, rated, 1)
	assert.Equal(t, "Shape of My Heart", rated[0].Title)

	albums, err := artist.DirectAlbums(ctx, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, albums.Pager.Total)
	require.Len(t, albums.Albums, 1)

	info, err := artist.BriefInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sting", info.Artist.Name)
	assert.Equal(t, []yandex.ID{"1204427"}, info.LastReleaseIDs)
	require.Len(t, info.SimilarArtists, 1)
	assert.Equal(t, "The Police", info.SimilarArtists[0].Name)
}
