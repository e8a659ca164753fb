// Package yandex is a client for the Yandex Music API.
//
// Objects returned by a Client keep a reference to the Client State and use
// it for follow-up calls, e.g. Album.Tracks or Playlist.EditTracks.
package yandex

import (
	"context"

	"github.com/samber/lo"

	"github.com/xeptore/yamusic/yandex/api"
)

type Client struct {
	state *State
}

// New creates a client authenticated with an OAuth token. An empty token
// makes anonymous calls, which the API limits to catalog reads.
func New(token string, opts ...api.Option) *Client {
	return &Client{state: NewState(api.NewHTTPClient(token, opts...))}
}

func (c *Client) State() *State {
	return c.state
}

func (c *Client) Identify(ctx context.Context) (*Account, error) {
	return c.state.Identify(ctx)
}

// Me returns the token owner.
func (c *Client) Me(ctx context.Context) (*User, error) {
	account, err := c.state.Identify(ctx)
	if nil != err {
		return nil, err
	}
	if account.UID == "" {
		return nil, ErrNotAuthenticated
	}
	return c.state.StoreUser(account.user(c.state)), nil
}

// Search runs a catalog search. An empty result is *api.NotFoundError with
// Query set.
func (c *Client) Search(ctx context.Context, text string, typ api.SearchType, page int) (*SearchResult, error) {
	resp, err := c.state.http.Search(ctx, text, typ, page, false)
	if nil != err {
		return nil, err
	}
	result, err := decodeSearch(c.state, resp.Body)
	if nil != err {
		return nil, err
	}
	if result.Empty() {
		return nil, nothingFound(text)
	}
	return result, nil
}

// SearchBest returns the best match for text. A best match of a kind not
// modelled here is *UnsupportedKindError.
func (c *Client) SearchBest(ctx context.Context, text string) (Entity, error) {
	result, err := c.Search(ctx, text, api.SearchAll, 0)
	if nil != err {
		return nil, err
	}
	if nil == result.Best {
		if result.UnsupportedBest != "" {
			return nil, &UnsupportedKindError{Name: result.UnsupportedBest}
		}
		return nil, nothingFound(text)
	}
	return result.Best, nil
}

func (c *Client) Track(ctx context.Context, id ID) (*Track, error) {
	tracks, err := c.Tracks(ctx, []ID{id})
	if nil != err {
		return nil, err
	}
	return tracks[0], nil
}

// Tracks looks up tracks by id. The result is stored in the state cache.
func (c *Client) Tracks(ctx context.Context, ids []ID) ([]*Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return fetchTracks(ctx, c.state, ids)
}

func (c *Client) Album(ctx context.Context, id ID) (*Album, error) {
	albums, err := c.Albums(ctx, []ID{id})
	if nil != err {
		return nil, err
	}
	return albums[0], nil
}

func (c *Client) Albums(ctx context.Context, ids []ID) ([]*Album, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := c.state.http.Albums(ctx, ids)
	if nil != err {
		return nil, err
	}
	albums, err := decodeResponse[[]*Album](resp)
	if nil != err {
		return nil, err
	}
	albums = bindAll(c.state, albums, (*Album).bind)
	if len(albums) == 0 {
		return nil, notFound(ids)
	}
	return albums, nil
}

func (c *Client) Artist(ctx context.Context, id ID) (*Artist, error) {
	artists, err := c.Artists(ctx, []ID{id})
	if nil != err {
		return nil, err
	}
	return artists[0], nil
}

func (c *Client) Artists(ctx context.Context, ids []ID) ([]*Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := c.state.http.Artists(ctx, ids)
	if nil != err {
		return nil, err
	}
	artists, err := decodeResponse[[]*Artist](resp)
	if nil != err {
		return nil, err
	}
	artists = bindAll(c.state, artists, (*Artist).bind)
	if len(artists) == 0 {
		return nil, notFound(ids)
	}
	return artists, nil
}

func (c *Client) Playlists(ctx context.Context, keys []PlaylistKey) ([]*Playlist, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	raw := lo.Map(keys, func(k PlaylistKey, _ int) string { return k.String() })
	resp, err := c.state.http.Playlists(ctx, raw)
	if nil != err {
		return nil, err
	}
	playlists, err := decodeResponse[[]*Playlist](resp)
	if nil != err {
		return nil, err
	}
	playlists = bindAll(c.state, playlists, (*Playlist).bind)
	if len(playlists) == 0 {
		return nil, notFound(lo.Map(raw, func(k string, _ int) ID { return ID(k) }))
	}
	return playlists, nil
}

// Playlist fetches a playlist with its tracks. owner is a login or a uid.
func (c *Client) Playlist(ctx context.Context, owner string, kind int) (*Playlist, error) {
	return fetchPlaylist(ctx, c.state, owner, kind)
}

// UserPlaylists lists the playlists of owner, or of the token owner if owner
// is empty.
func (c *Client) UserPlaylists(ctx context.Context, owner string) ([]*Playlist, error) {
	if owner == "" {
		uid, err := c.state.UserID(ctx)
		if nil != err {
			return nil, err
		}
		owner = string(uid)
	}
	return fetchUserPlaylists(ctx, c.state, owner)
}

func (c *Client) CreatePlaylist(ctx context.Context, title string, visibility api.Visibility) (*Playlist, error) {
	uid, err := c.state.UserID(ctx)
	if nil != err {
		return nil, err
	}
	resp, err := c.state.http.CreatePlaylist(ctx, uid, title, visibility)
	if nil != err {
		return nil, err
	}
	p, err := decodeResponse[*Playlist](resp)
	if nil != err {
		return nil, err
	}
	return p.bind(c.state), nil
}

func (c *Client) LikeTracks(ctx context.Context, ids []ID) error {
	if len(ids) == 0 {
		return nil
	}
	return likeTracks(ctx, c.state, ids)
}

func (c *Client) DislikeTracks(ctx context.Context, ids []ID) error {
	if len(ids) == 0 {
		return nil
	}
	return dislikeTracks(ctx, c.state, ids)
}

// LikedTracks lists the tracks in the token owner's library.
func (c *Client) LikedTracks(ctx context.Context) ([]*ShortTrack, error) {
	uid, err := c.state.UserID(ctx)
	if nil != err {
		return nil, err
	}
	resp, err := c.state.http.LikedTracks(ctx, uid)
	if nil != err {
		return nil, err
	}
	payload, err := decodeResponse[struct {
		Library struct {
			UID      ID            `json:"uid"`
			Revision int           `json:"revision"`
			Tracks   []*ShortTrack `json:"tracks"`
		} `json:"library"`
	}](resp)
	if nil != err {
		return nil, err
	}
	return bindAll(c.state, payload.Library.Tracks, (*ShortTrack).bind), nil
}

// DownloadLink resolves a fresh signed link to the track media.
func (c *Client) DownloadLink(ctx context.Context, trackID ID, bitrate int) (string, error) {
	return c.state.resolver.Resolve(ctx, trackID, bitrate)
}
