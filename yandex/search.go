package yandex

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
)

// Kind is the type of a catalog entity.
type Kind int

const (
	KindTrack Kind = iota + 1
	KindAlbum
	KindArtist
	KindPlaylist
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindAlbum:
		return "album"
	case KindArtist:
		return "artist"
	case KindPlaylist:
		return "playlist"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type UnsupportedKindError struct {
	Name string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported entity kind %q", e.Name)
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "track":
		return KindTrack, nil
	case "album":
		return KindAlbum, nil
	case "artist":
		return KindArtist, nil
	case "playlist":
		return KindPlaylist, nil
	default:
		return 0, &UnsupportedKindError{Name: s}
	}
}

// Entity is one of *Track, *Album, *Artist or *Playlist.
type Entity interface {
	EntityKind() Kind
	URL() string
	isEntity()
}

type SearchSection[T any] struct {
	Total   int `json:"total"`
	PerPage int `json:"perPage"`
	Results []T `json:"results"`
}

func (s *SearchSection[T]) items() []T {
	if nil == s {
		return nil
	}
	return s.Results
}

type SearchResult struct {
	Text              string
	Page              int
	PerPage           int
	MisspellCorrected bool
	MisspellOriginal  string
	Best              Entity
	// UnsupportedBest names the kind of a best match this package does not
	// model, in which case Best is nil.
	UnsupportedBest string
	Tracks            []*Track
	Albums            []*Album
	Artists           []*Artist
	Playlists         []*Playlist
}

// Empty reports whether no section of the result holds anything.
func (r *SearchResult) Empty() bool {
	return nil == r.Best && r.UnsupportedBest == "" && len(r.Tracks) == 0 && len(r.Albums) == 0 && len(r.Artists) == 0 && len(r.Playlists) == 0
}

type searchPayload struct {
	Text              string                   `json:"text"`
	Page              int                      `json:"page"`
	PerPage           int                      `json:"perPage"`
	MisspellCorrected bool                     `json:"misspellCorrected"`
	MisspellOriginal  string                   `json:"misspellOriginal"`
	Tracks            *SearchSection[*Track]    `json:"tracks"`
	Albums            *SearchSection[*Album]    `json:"albums"`
	Artists           *SearchSection[*Artist]   `json:"artists"`
	Playlists         *SearchSection[*Playlist] `json:"playlists"`
}

func decodeSearch(s *State, body []byte) (*SearchResult, error) {
	var payload searchPayload
	if err := json.Unmarshal(body, &payload); nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP(), "body": string(body)}
		return nil, flaw.From(fmt.Errorf("failed to decode search result: %v", err)).Append(flawP)
	}

	out := &SearchResult{
		Text:              payload.Text,
		Page:              payload.Page,
		PerPage:           payload.PerPage,
		MisspellCorrected: payload.MisspellCorrected,
		MisspellOriginal:  payload.MisspellOriginal,
		Best:              nil,
		UnsupportedBest:   "",
		Tracks:            bindAll(s, payload.Tracks.items(), (*Track).bind),
		Albums:            bindAll(s, payload.Albums.items(), (*Album).bind),
		Artists:           bindAll(s, payload.Artists.items(), (*Artist).bind),
		Playlists:         bindAll(s, payload.Playlists.items(), (*Playlist).bind),
	}
	s.storeTracks(out.Tracks)

	if best := gjson.GetBytes(body, "best"); best.Exists() && best.Type == gjson.JSON {
		entity, err := decodeBest(s, []byte(best.Raw))
		if nil != err {
			if kindErr, ok := errutil.As[*UnsupportedKindError](err); ok {
				out.UnsupportedBest = kindErr.Name
				return out, nil
			}
			return nil, err
		}
		out.Best = entity
	}
	return out, nil
}

// decodeBest dispatches on the "type" of the best-match block. A best match
// of a kind this package does not model, such as a podcast episode, yields
// *UnsupportedKindError.
func decodeBest(s *State, best []byte) (Entity, error) {
	kind, err := ParseKind(gjson.GetBytes(best, "type").String())
	if nil != err {
		return nil, err
	}
	raw := []byte(gjson.GetBytes(best, "result").Raw)

	switch kind {
	case KindTrack:
		return decodeEntity(s, raw, (*Track).bind)
	case KindAlbum:
		return decodeEntity(s, raw, (*Album).bind)
	case KindArtist:
		return decodeEntity(s, raw, (*Artist).bind)
	case KindPlaylist:
		return decodeEntity(s, raw, (*Playlist).bind)
	default:
		panic(fmt.Sprintf("unexpected entity kind %d", kind))
	}
}

func decodeEntity[T any, P interface {
	*T
	Entity
}](s *State, raw []byte, bind func(P, *State) P) (Entity, error) {
	v := P(new(T))
	if err := json.Unmarshal(raw, v); nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP(), "body": string(raw)}
		return nil, flaw.From(fmt.Errorf("failed to decode best search match: %v", err)).Append(flawP)
	}
	bind(v, s)
	if t, ok := any(v).(*Track); ok {
		s.StoreTrack(t)
	}
	return v, nil
}

func bindAll[T comparable](s *State, items []T, bind func(T, *State) T) []T {
	var zero T
	out := make([]T, 0, len(items))
	for _, v := range items {
		if v == zero {
			continue
		}
		out = append(out, bind(v, s))
	}
	return out
}
