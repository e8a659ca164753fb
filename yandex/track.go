package yandex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/xeptore/yamusic/yandex/api"
)

const (
	DefaultCoverSize = "1080x1080"
	webURL           = "https://music.yandex.ru"
)

type Track struct {
	state *State

	ID                             ID        `json:"id"`
	RealID                         ID        `json:"realId,omitempty"`
	Title                          string    `json:"title"`
	Version                        string    `json:"version,omitempty"`
	DurationMs                     int64     `json:"durationMs"`
	CoverURI                       string    `json:"coverUri,omitempty"`
	OgImage                        string    `json:"ogImage,omitempty"`
	Artists                        []*Artist `json:"artists"`
	Albums                         []*Album  `json:"albums"`
	Available                      bool      `json:"available"`
	AvailableForPremiumUsers       bool      `json:"availableForPremiumUsers"`
	AvailableFullWithoutPermission bool      `json:"availableFullWithoutPermission"`
	FileSize                       int64     `json:"fileSize,omitempty"`
	LyricsAvailable                bool      `json:"lyricsAvailable"`
	Major                          *Major    `json:"major,omitempty"`
}

func (t *Track) bind(s *State) *Track {
	if nil == t {
		return nil
	}
	t.state = s
	for _, a := range t.Artists {
		a.bind(s)
	}
	for _, a := range t.Albums {
		a.bind(s)
	}
	return t
}

func (t *Track) EntityKind() Kind { return KindTrack }
func (*Track) isEntity()          {}

func (t *Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// AlbumID returns the id of the first album the track belongs to.
func (t *Track) AlbumID() (ID, bool) {
	if len(t.Albums) == 0 || nil == t.Albums[0] {
		return "", false
	}
	return t.Albums[0].ID, true
}

// Ref returns the reference playlist edits address the track by.
func (t *Track) Ref() (TrackRef, error) {
	albumID, ok := t.AlbumID()
	if !ok {
		return TrackRef{}, fmt.Errorf("%w: track %s has no album", ErrInvalidTrackRef, t.ID)
	}
	return TrackRef{ID: t.ID, AlbumID: albumID}, nil
}

func (t *Track) URL() string {
	if albumID, ok := t.AlbumID(); ok {
		return trackURL(t.ID, albumID)
	}
	return webURL + "/track/" + string(t.ID)
}

// CoverURL returns the cover image at size, e.g. "400x400". An empty size
// selects DefaultCoverSize. It is empty if the track has no cover.
func (t *Track) CoverURL(size string) string {
	return coverURL(lo.Ternary(t.OgImage != "", t.OgImage, t.CoverURI), size)
}

func (t *Track) String() string {
	if artists := JoinArtists(t.Artists); artists != "" {
		return t.Title + " - " + artists
	}
	return t.Title
}

// DownloadLink resolves a fresh signed link to the track media. Links expire
// and are never cached.
func (t *Track) DownloadLink(ctx context.Context, bitrate int) (string, error) {
	return t.state.resolver.Resolve(ctx, t.ID, bitrate)
}

func (t *Track) Like(ctx context.Context) error {
	return likeTracks(ctx, t.state, []ID{t.ID})
}

func (t *Track) Dislike(ctx context.Context) error {
	return dislikeTracks(ctx, t.state, []ID{t.ID})
}

// ShortTrack is a track reference as listed in the user library.
type ShortTrack struct {
	state *State

	ID        ID     `json:"id"`
	AlbumID   ID     `json:"albumId"`
	Timestamp string `json:"timestamp"`
}

func (t *ShortTrack) bind(s *State) *ShortTrack {
	if nil != t {
		t.state = s
	}
	return t
}

// AddedAt parses Timestamp. It reports false if the timestamp is absent or
// malformed.
func (t *ShortTrack) AddedAt() (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339, t.Timestamp)
	if nil != err {
		return time.Time{}, false
	}
	return ts, true
}

func (t *ShortTrack) Ref() TrackRef {
	return TrackRef{ID: t.ID, AlbumID: t.AlbumID}
}

func (t *ShortTrack) URL() string {
	if t.AlbumID == "" {
		return webURL + "/track/" + string(t.ID)
	}
	return trackURL(t.ID, t.AlbumID)
}

// Resolve returns the full track, from the state cache when present.
func (t *ShortTrack) Resolve(ctx context.Context) (*Track, error) {
	if cached, ok := t.state.Track(t.ID); ok {
		return cached, nil
	}
	tracks, err := fetchTracks(ctx, t.state, []ID{t.ID})
	if nil != err {
		return nil, err
	}
	return tracks[0], nil
}

func (t *ShortTrack) DownloadLink(ctx context.Context, bitrate int) (string, error) {
	return t.state.resolver.Resolve(ctx, t.ID, bitrate)
}

func (t *ShortTrack) Like(ctx context.Context) error {
	return likeTracks(ctx, t.state, []ID{t.ID})
}

func (t *ShortTrack) Dislike(ctx context.Context) error {
	return dislikeTracks(ctx, t.state, []ID{t.ID})
}

// JoinArtists renders artist names the way the web player lists them.
func JoinArtists(artists []*Artist) string {
	names := lo.FilterMap(artists, func(a *Artist, _ int) (string, bool) {
		if nil == a {
			return "", false
		}
		return a.Name, a.Name != ""
	})
	return strings.Join(names, ", ")
}

func trackURL(id, albumID ID) string {
	return webURL + "/album/" + string(albumID) + "/track/" + string(id)
}

func coverURL(template, size string) string {
	if template == "" {
		return ""
	}
	if size == "" {
		size = DefaultCoverSize
	}
	return "https://" + strings.ReplaceAll(template, "%%", size)
}

func fetchTracks(ctx context.Context, s *State, ids []ID) ([]*Track, error) {
	resp, err := s.http.Tracks(ctx, ids, true)
	if nil != err {
		return nil, err
	}
	tracks, err := decodeResponse[[]*Track](resp)
	if nil != err {
		return nil, err
	}
	tracks = lo.Compact(tracks)
	if len(tracks) == 0 {
		return nil, notFound(ids)
	}
	for _, t := range tracks {
		t.bind(s)
	}
	return s.storeTracks(tracks), nil
}

func likeTracks(ctx context.Context, s *State, ids []ID) error {
	uid, err := s.UserID(ctx)
	if nil != err {
		return err
	}
	_, err = s.http.LikeTracks(ctx, uid, ids)
	return err
}

func dislikeTracks(ctx context.Context, s *State, ids []ID) error {
	uid, err := s.UserID(ctx)
	if nil != err {
		return err
	}
	_, err = s.http.DislikeTracks(ctx, uid, ids)
	return err
}

func notFound(ids []ID) *api.NotFoundError {
	return &api.NotFoundError{
		HTTPError: api.HTTPError{StatusCode: 0, Body: nil, Name: "", Message: "", EdgeBlocked: false},
		IDs:       lo.Map(ids, func(id ID, _ int) string { return string(id) }),
		Query:     "",
	}
}

func nothingFound(query string) *api.NotFoundError {
	return &api.NotFoundError{
		HTTPError: api.HTTPError{StatusCode: 0, Body: nil, Name: "", Message: "", EdgeBlocked: false},
		IDs:       nil,
		Query:     query,
	}
}
