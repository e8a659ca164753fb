package yandex

import (
	"context"

	"github.com/samber/lo"

	"github.com/xeptore/yamusic/mathutil"
	"github.com/xeptore/yamusic/yandex/api"
)

// ArtistTracksPageSize is the page size AllTracks walks the catalog with.
const ArtistTracksPageSize = 100

type Artist struct {
	state *State

	ID            ID       `json:"id"`
	Name          string   `json:"name"`
	Various       bool     `json:"various"`
	Composer      bool     `json:"composer"`
	Cover         *Cover   `json:"cover,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	PopularTracks []*Track `json:"popularTracks,omitempty"`
}

func (a *Artist) bind(s *State) *Artist {
	if nil == a {
		return nil
	}
	a.state = s
	for _, t := range a.PopularTracks {
		t.bind(s)
	}
	return a
}

func (a *Artist) EntityKind() Kind { return KindArtist }
func (*Artist) isEntity()          {}

func (a *Artist) URL() string {
	return webURL + "/artist/" + string(a.ID)
}

// AvatarURL returns the artist cover at size, or an empty string.
func (a *Artist) AvatarURL(size string) string {
	if nil == a.Cover {
		return ""
	}
	return coverURL(a.Cover.URI, size)
}

func (a *Artist) String() string {
	return a.Name
}

type TracksPage struct {
	Pager  Pager
	Tracks []*Track
}

type AlbumsPage struct {
	Pager  Pager
	Albums []*Album
}

type ArtistBriefInfo struct {
	Artist         *Artist
	Albums         []*Album
	AlsoAlbums     []*Album
	PopularTracks  []*Track
	SimilarArtists []*Artist
	LastReleaseIDs []ID
}

// RatingTracks returns the artist tracks ordered by popularity.
func (a *Artist) RatingTracks(ctx context.Context) ([]*Track, error) {
	resp, err := a.state.http.ArtistTrackIDsByRating(ctx, a.ID)
	if nil != err {
		return nil, err
	}

	payload, err := decodeResponse[struct {
		Tracks []ID `json:"tracks"`
	}](resp)
	if nil != err {
		return nil, err
	}
	if len(payload.Tracks) == 0 {
		return nil, nil
	}
	return fetchTracks(ctx, a.state, payload.Tracks)
}

// Tracks returns one page of the artist tracks. Pages are zero based.
func (a *Artist) Tracks(ctx context.Context, page, pageSize int) (*TracksPage, error) {
	resp, err := a.state.http.ArtistTracks(ctx, a.ID, page, pageSize)
	if nil != err {
		return nil, err
	}

	payload, err := decodeResponse[struct {
		Pager  Pager    `json:"pager"`
		Tracks []*Track `json:"tracks"`
	}](resp)
	if nil != err {
		return nil, err
	}

	tracks := lo.Compact(payload.Tracks)
	for _, t := range tracks {
		t.bind(a.state)
	}
	return &TracksPage{Pager: payload.Pager, Tracks: a.state.storeTracks(tracks)}, nil
}

// AllTracks walks every page of the artist tracks.
func (a *Artist) AllTracks(ctx context.Context) ([]*Track, error) {
	first, err := a.Tracks(ctx, 0, ArtistTracksPageSize)
	if nil != err {
		return nil, err
	}

	// The server may cap the page size below the requested one.
	perPage := first.Pager.PerPage
	if perPage <= 0 {
		perPage = ArtistTracksPageSize
	}
	pages := mathutil.CeilInts(first.Pager.Total, perPage)

	tracks := make([]*Track, 0, max(first.Pager.Total, len(first.Tracks)))
	tracks = append(tracks, first.Tracks...)
	for page := 1; page < pages; page++ {
		next, err := a.Tracks(ctx, page, ArtistTracksPageSize)
		if nil != err {
			return nil, err
		}
		if len(next.Tracks) == 0 {
			break
		}
		tracks = append(tracks, next.Tracks...)
	}
	return tracks, nil
}

// DirectAlbums returns one page of the albums the artist released, newest
// first.
func (a *Artist) DirectAlbums(ctx context.Context, page, pageSize int) (*AlbumsPage, error) {
	resp, err := a.state.http.ArtistDirectAlbums(ctx, a.ID, page, pageSize, api.SortByYear)
	if nil != err {
		return nil, err
	}

	payload, err := decodeResponse[struct {
		Pager  Pager    `json:"pager"`
		Albums []*Album `json:"albums"`
	}](resp)
	if nil != err {
		return nil, err
	}

	albums := lo.Compact(payload.Albums)
	for _, album := range albums {
		album.bind(a.state)
	}
	return &AlbumsPage{Pager: payload.Pager, Albums: albums}, nil
}

func (a *Artist) BriefInfo(ctx context.Context) (*ArtistBriefInfo, error) {
	resp, err := a.state.http.ArtistBriefInfo(ctx, a.ID)
	if nil != err {
		return nil, err
	}

	payload, err := decodeResponse[struct {
		Artist         *Artist   `json:"artist"`
		Albums         []*Album  `json:"albums"`
		AlsoAlbums     []*Album  `json:"alsoAlbums"`
		PopularTracks  []*Track  `json:"popularTracks"`
		SimilarArtists []*Artist `json:"similarArtists"`
		LastReleaseIDs []ID      `json:"lastReleaseIds"`
	}](resp)
	if nil != err {
		return nil, err
	}

	info := &ArtistBriefInfo{
		Artist:         payload.Artist.bind(a.state),
		Albums:         lo.Map(lo.Compact(payload.Albums), func(v *Album, _ int) *Album { return v.bind(a.state) }),
		AlsoAlbums:     lo.Map(lo.Compact(payload.AlsoAlbums), func(v *Album, _ int) *Album { return v.bind(a.state) }),
		PopularTracks:  lo.Map(lo.Compact(payload.PopularTracks), func(v *Track, _ int) *Track { return v.bind(a.state) }),
		SimilarArtists: lo.Map(lo.Compact(payload.SimilarArtists), func(v *Artist, _ int) *Artist { return v.bind(a.state) }),
		LastReleaseIDs: payload.LastReleaseIDs,
	}
	a.state.storeTracks(info.PopularTracks)
	return info, nil
}
