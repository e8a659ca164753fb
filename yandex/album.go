package yandex

import (
	"context"
	"time"

	"github.com/samber/lo"
)

type Album struct {
	state *State

	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Version     string     `json:"version,omitempty"`
	MetaType    string     `json:"metaType,omitempty"`
	Year        int        `json:"year,omitempty"`
	ReleaseDate string     `json:"releaseDate,omitempty"`
	CoverURI    string     `json:"coverUri,omitempty"`
	OgImage     string     `json:"ogImage,omitempty"`
	Genre       string     `json:"genre,omitempty"`
	TrackCount  int        `json:"trackCount"`
	Artists     []*Artist  `json:"artists,omitempty"`
	Available   bool       `json:"available"`
	Bests       []ID       `json:"bests,omitempty"`
	Volumes     [][]*Track `json:"volumes,omitempty"`
}

func (a *Album) bind(s *State) *Album {
	if nil == a {
		return nil
	}
	a.state = s
	for _, artist := range a.Artists {
		artist.bind(s)
	}
	for _, volume := range a.Volumes {
		for _, t := range volume {
			t.bind(s)
		}
	}
	return a
}

func (a *Album) EntityKind() Kind { return KindAlbum }
func (*Album) isEntity()          {}

// ReleasedAt parses ReleaseDate. It reports false if the album has no
// release date.
func (a *Album) ReleasedAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, a.ReleaseDate)
	if nil != err {
		return time.Time{}, false
	}
	return t, true
}

func (a *Album) URL() string {
	return webURL + "/album/" + string(a.ID)
}

func (a *Album) CoverURL(size string) string {
	return coverURL(lo.Ternary(a.OgImage != "", a.OgImage, a.CoverURI), size)
}

func (a *Album) String() string {
	if artists := JoinArtists(a.Artists); artists != "" {
		return a.Title + " - " + artists
	}
	return a.Title
}

// Tracks fetches the album with its tracks and returns them in volume order.
// The returned tracks are stored in the state cache. a itself is left as is.
func (a *Album) Tracks(ctx context.Context) ([]*Track, error) {
	resp, err := a.state.http.AlbumWithTracks(ctx, a.ID)
	if nil != err {
		return nil, err
	}

	full, err := decodeResponse[*Album](resp)
	if nil != err {
		return nil, err
	}
	full.bind(a.state)

	tracks := lo.Compact(lo.Flatten(full.Volumes))
	return a.state.storeTracks(tracks), nil
}
