package yandex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/xeptore/yamusic/yandex/api"
)

// PlaylistKey identifies a playlist by its owner (uid or login) and kind.
type PlaylistKey struct {
	Owner string
	Kind  int
}

func (k PlaylistKey) String() string {
	return k.Owner + ":" + strconv.Itoa(k.Kind)
}

// ParsePlaylistKey parses an "owner:kind" key.
func ParsePlaylistKey(s string) (PlaylistKey, error) {
	owner, kind, ok := strings.Cut(s, ":")
	if !ok || owner == "" {
		return PlaylistKey{}, fmt.Errorf("invalid playlist key %q, expected owner:kind", s)
	}
	n, err := strconv.Atoi(kind)
	if nil != err {
		return PlaylistKey{}, fmt.Errorf("invalid playlist kind in %q: %v", s, err)
	}
	return PlaylistKey{Owner: owner, Kind: n}, nil
}

type PlaylistEntry struct {
	ID        ID     `json:"id"`
	Timestamp string `json:"timestamp,omitempty"`
	Track     *Track `json:"track,omitempty"`
}

type Playlist struct {
	state *State

	UID         ID              `json:"uid"`
	Kind        int             `json:"kind"`
	Revision    int             `json:"revision"`
	Owner       *User           `json:"owner,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Visibility  api.Visibility  `json:"visibility,omitempty"`
	TrackCount  int             `json:"trackCount"`
	DurationMs  int64           `json:"durationMs,omitempty"`
	OgImage     string          `json:"ogImage,omitempty"`
	Entries     []PlaylistEntry `json:"tracks,omitempty"`
}

func (p *Playlist) bind(s *State) *Playlist {
	if nil == p {
		return nil
	}
	p.state = s
	if nil != p.Owner {
		p.Owner.bind(s)
		if p.Owner.UID != "" {
			s.StoreUser(p.Owner)
		}
	}
	for _, e := range p.Entries {
		e.Track.bind(s)
	}
	return p
}

func (p *Playlist) EntityKind() Kind { return KindPlaylist }
func (*Playlist) isEntity()          {}

func (p *Playlist) Key() PlaylistKey {
	return PlaylistKey{Owner: p.owner(), Kind: p.Kind}
}

func (p *Playlist) owner() string {
	if p.UID != "" {
		return string(p.UID)
	}
	if nil != p.Owner {
		return lo.Ternary(p.Owner.UID != "", string(p.Owner.UID), p.Owner.Login)
	}
	return ""
}

func (p *Playlist) URL() string {
	owner := p.owner()
	if nil != p.Owner && p.Owner.Login != "" {
		owner = p.Owner.Login
	}
	return webURL + "/users/" + owner + "/playlists/" + strconv.Itoa(p.Kind)
}

func (p *Playlist) CoverURL(size string) string {
	return coverURL(p.OgImage, size)
}

func (p *Playlist) String() string {
	return p.Title
}

// Tracks returns the hydrated tracks of the playlist in order. Entries that
// carry no track payload are skipped.
func (p *Playlist) Tracks() []*Track {
	return lo.FilterMap(p.Entries, func(e PlaylistEntry, _ int) (*Track, bool) { return e.Track, nil != e.Track })
}

// EditTracks submits diff against the revision p was fetched at and returns
// the updated playlist. If the playlist changed in between, the error is
// *api.RevisionConflictError and p should be refreshed before retrying.
func (p *Playlist) EditTracks(ctx context.Context, diff *Diff) (*Playlist, error) {
	if nil == diff {
		return nil, errors.New("nil playlist diff")
	}
	body, err := diff.MarshalJSON()
	if nil != err {
		return nil, err
	}

	resp, err := p.state.http.EditPlaylistTracks(ctx, p.owner(), p.Kind, p.Revision, body)
	if nil != err {
		return nil, err
	}
	return p.decode(resp)
}

func (p *Playlist) InsertTracks(ctx context.Context, at int, items ...InsertItem) (*Playlist, error) {
	return p.EditTracks(ctx, NewDiff().Insert(at, items...))
}

// DeleteTracks removes the half-open range [from, to).
func (p *Playlist) DeleteTracks(ctx context.Context, from, to int) (*Playlist, error) {
	return p.EditTracks(ctx, NewDiff().Delete(from, to))
}

func (p *Playlist) Rename(ctx context.Context, title string) (*Playlist, error) {
	resp, err := p.state.http.RenamePlaylist(ctx, p.owner(), p.Kind, title)
	if nil != err {
		return nil, err
	}
	return p.decode(resp)
}

func (p *Playlist) SetVisibility(ctx context.Context, visibility api.Visibility) (*Playlist, error) {
	resp, err := p.state.http.SetPlaylistVisibility(ctx, p.owner(), p.Kind, visibility)
	if nil != err {
		return nil, err
	}
	return p.decode(resp)
}

func (p *Playlist) Delete(ctx context.Context) error {
	_, err := p.state.http.DeletePlaylist(ctx, p.owner(), p.Kind)
	return err
}

// Refresh fetches the current snapshot of the playlist.
func (p *Playlist) Refresh(ctx context.Context) (*Playlist, error) {
	return fetchPlaylist(ctx, p.state, p.owner(), p.Kind)
}

type Recommendations struct {
	BatchID string
	Tracks  []*Track
}

func (p *Playlist) Recommendations(ctx context.Context) (*Recommendations, error) {
	resp, err := p.state.http.PlaylistRecommendations(ctx, p.owner(), p.Kind)
	if nil != err {
		return nil, err
	}

	payload, err := decodeResponse[struct {
		BatchID string   `json:"batch_id"`
		Tracks  []*Track `json:"tracks"`
	}](resp)
	if nil != err {
		return nil, err
	}

	tracks := lo.Compact(payload.Tracks)
	for _, t := range tracks {
		t.bind(p.state)
	}
	return &Recommendations{BatchID: payload.BatchID, Tracks: p.state.storeTracks(tracks)}, nil
}

func (p *Playlist) decode(resp *api.Response) (*Playlist, error) {
	updated, err := decodeResponse[*Playlist](resp)
	if nil != err {
		return nil, err
	}
	if nil == updated {
		return nil, errors.New("playlist response has no result")
	}
	return updated.bind(p.state), nil
}

// Playlists lists the playlists the user owns.
func (u *User) Playlists(ctx context.Context) ([]*Playlist, error) {
	return fetchUserPlaylists(ctx, u.state, string(u.UID))
}

func fetchPlaylist(ctx context.Context, s *State, owner string, kind int) (*Playlist, error) {
	resp, err := s.http.UserPlaylist(ctx, owner, kind)
	if nil != err {
		return nil, err
	}
	p, err := decodeResponse[*Playlist](resp)
	if nil != err {
		return nil, err
	}
	if nil == p {
		return nil, notFound([]ID{ID(PlaylistKey{Owner: owner, Kind: kind}.String())})
	}
	return p.bind(s), nil
}

func fetchUserPlaylists(ctx context.Context, s *State, owner string) ([]*Playlist, error) {
	resp, err := s.http.UserPlaylists(ctx, owner)
	if nil != err {
		return nil, err
	}
	playlists, err := decodeResponse[[]*Playlist](resp)
	if nil != err {
		return nil, err
	}
	playlists = lo.Compact(playlists)
	for _, p := range playlists {
		p.bind(s)
	}
	return playlists, nil
}
