package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
)

type SearchType string

const (
	SearchAll      SearchType = "all"
	SearchTrack    SearchType = "track"
	SearchAlbum    SearchType = "album"
	SearchArtist   SearchType = "artist"
	SearchPlaylist SearchType = "playlist"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// DirectAlbumsSort orders the albums returned by ArtistDirectAlbums.
type DirectAlbumsSort string

const (
	SortByYear   DirectAlbumsSort = "year"
	SortByRating DirectAlbumsSort = "rating"
)

func (c *HTTPClient) get(ctx context.Context, template string, path Params, query Params) (*Response, error) {
	route, err := c.Route(http.MethodGet, template, path)
	if nil != err {
		return nil, err
	}
	return c.Request(ctx, route, RequestOptions{Query: query, Form: nil, JSON: nil})
}

func (c *HTTPClient) post(ctx context.Context, template string, path Params, form Params) (*Response, error) {
	route, err := c.Route(http.MethodPost, template, path)
	if nil != err {
		return nil, err
	}
	return c.Request(ctx, route, RequestOptions{Query: nil, Form: form, JSON: nil})
}

func (c *HTTPClient) AccountStatus(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/account/status", nil, nil)
}

func (c *HTTPClient) Search(ctx context.Context, text string, typ SearchType, page int, noCorrect bool) (*Response, error) {
	query := Params{
		"text":             text,
		"nocorrect":        noCorrect,
		"type":             string(typ),
		"page":             page,
		"playlist-in-best": true,
	}
	return c.get(ctx, "/search", nil, query)
}

func (c *HTTPClient) Tracks(ctx context.Context, ids []ID, withPositions bool) (*Response, error) {
	return c.get(ctx, "/tracks", nil, Params{"track-ids": ids, "with-positions": withPositions})
}

func (c *HTTPClient) Albums(ctx context.Context, ids []ID) (*Response, error) {
	return c.get(ctx, "/albums", nil, Params{"album-ids": ids})
}

func (c *HTTPClient) Artists(ctx context.Context, ids []ID) (*Response, error) {
	return c.get(ctx, "/artists", nil, Params{"artist-ids": ids})
}

// Playlists looks up playlists by "owner:kind" keys.
func (c *HTTPClient) Playlists(ctx context.Context, keys []string) (*Response, error) {
	return c.get(ctx, "/playlists/list", nil, Params{"playlists-ids": keys})
}

func (c *HTTPClient) DownloadInfo(ctx context.Context, trackID ID) (*Response, error) {
	return c.get(ctx, "/tracks/{track_id}/download-info", Params{"track_id": trackID}, nil)
}

// DownloadInfoDocument fetches the XML document a download-info entry points to.
func (c *HTTPClient) DownloadInfoDocument(ctx context.Context, link string) ([]byte, error) {
	return c.Document(ctx, link)
}

func (c *HTTPClient) AlbumWithTracks(ctx context.Context, albumID ID) (*Response, error) {
	return c.get(ctx, "/albums/{album_id}/with-tracks", Params{"album_id": albumID}, nil)
}

func (c *HTTPClient) ArtistTrackIDsByRating(ctx context.Context, artistID ID) (*Response, error) {
	return c.get(ctx, "/artists/{artist_id}/track-ids-by-rating", Params{"artist_id": artistID}, nil)
}

func (c *HTTPClient) ArtistBriefInfo(ctx context.Context, artistID ID) (*Response, error) {
	return c.get(ctx, "/artists/{artist_id}/brief-info", Params{"artist_id": artistID}, nil)
}

func (c *HTTPClient) ArtistTracks(ctx context.Context, artistID ID, page, pageSize int) (*Response, error) {
	query := Params{"page": page, "page-size": pageSize}
	return c.get(ctx, "/artists/{artist_id}/tracks", Params{"artist_id": artistID}, query)
}

func (c *HTTPClient) ArtistDirectAlbums(ctx context.Context, artistID ID, page, pageSize int, sortBy DirectAlbumsSort) (*Response, error) {
	query := Params{"page": page, "page-size": pageSize, "sort-by": string(sortBy)}
	return c.get(ctx, "/artists/{artist_id}/direct-albums", Params{"artist_id": artistID}, query)
}

// UserPlaylists lists the playlists of owner, which is either a login or a uid.
func (c *HTTPClient) UserPlaylists(ctx context.Context, owner string) (*Response, error) {
	return c.get(ctx, "/users/{owner}/playlists/list", Params{"owner": owner}, nil)
}

func (c *HTTPClient) UserPlaylist(ctx context.Context, owner string, kind int) (*Response, error) {
	return c.get(ctx, "/users/{owner}/playlists/{kind}", Params{"owner": owner, "kind": kind}, nil)
}

func (c *HTTPClient) PlaylistRecommendations(ctx context.Context, owner string, kind int) (*Response, error) {
	return c.get(ctx, "/users/{owner}/playlists/{kind}/recommendations", Params{"owner": owner, "kind": kind}, nil)
}

func (c *HTTPClient) LikedTracks(ctx context.Context, userID ID) (*Response, error) {
	return c.get(ctx, "/users/{user_id}/likes/tracks", Params{"user_id": userID}, nil)
}

func (c *HTTPClient) CreatePlaylist(ctx context.Context, userID ID, title string, visibility Visibility) (*Response, error) {
	form := Params{"title": title, "visibility": string(visibility)}
	return c.post(ctx, "/users/{user_id}/playlists/create", Params{"user_id": userID}, form)
}

func (c *HTTPClient) DeletePlaylist(ctx context.Context, owner string, kind int) (*Response, error) {
	return c.post(ctx, "/users/{owner}/playlists/{kind}/delete", Params{"owner": owner, "kind": kind}, nil)
}

func (c *HTTPClient) RenamePlaylist(ctx context.Context, owner string, kind int, title string) (*Response, error) {
	return c.post(ctx, "/users/{owner}/playlists/{kind}/name", Params{"owner": owner, "kind": kind}, Params{"value": title})
}

func (c *HTTPClient) SetPlaylistVisibility(ctx context.Context, owner string, kind int, visibility Visibility) (*Response, error) {
	form := Params{"value": string(visibility)}
	return c.post(ctx, "/users/{owner}/playlists/{kind}/visibility", Params{"owner": owner, "kind": kind}, form)
}

// EditPlaylistTracks submits diff, a JSON array of insert/delete operations,
// against the given playlist revision. A stale revision results in
// *RevisionConflictError.
func (c *HTTPClient) EditPlaylistTracks(ctx context.Context, owner string, kind, revision int, diff json.RawMessage) (*Response, error) {
	if !json.Valid(diff) {
		return nil, flaw.From(errors.New("playlist diff is not valid json")).Append(flaw.P{"diff": string(diff)})
	}
	form := Params{"kind": kind, "revision": revision, "diff": string(diff)}
	resp, err := c.post(ctx, "/users/{owner}/playlists/{kind}/change-relative", Params{"owner": owner, "kind": kind}, form)
	if nil != err {
		if httpErr, ok := errutil.As[*HTTPError](err); ok && isRevisionConflict(httpErr) {
			return nil, &RevisionConflictError{HTTPError: *httpErr, Owner: owner, Kind: kind, Revision: revision}
		}
		return nil, err
	}
	return resp, nil
}

func isRevisionConflict(err *HTTPError) bool {
	return err.StatusCode == http.StatusPreconditionFailed || err.Name == "wrong-revision"
}

func (c *HTTPClient) LikeTracks(ctx context.Context, userID ID, trackIDs []ID) (*Response, error) {
	return c.post(ctx, "/users/{user_id}/likes/tracks/add-multiple", Params{"user_id": userID}, Params{"track-ids": trackIDs})
}

func (c *HTTPClient) DislikeTracks(ctx context.Context, userID ID, trackIDs []ID) (*Response, error) {
	return c.post(ctx, "/users/{user_id}/likes/tracks/remove", Params{"user_id": userID}, Params{"track-ids": trackIDs})
}
