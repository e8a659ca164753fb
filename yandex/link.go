package yandex

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

var ErrUnsupportedLink = errors.New("not a yandex music track, album, artist or playlist link")

// Link is a parsed web player link.
type Link struct {
	Kind Kind
	// ID is the track, album or artist id. It is empty for playlists.
	ID ID
	// AlbumID is set for track links that name the album.
	AlbumID ID
	// Owner and PlaylistKind are set for playlist links.
	Owner        string
	PlaylistKind int
}

func (l Link) PlaylistKey() PlaylistKey {
	return PlaylistKey{Owner: l.Owner, Kind: l.PlaylistKind}
}

func IsLink(text string) bool {
	_, err := ParseLink(text)
	return nil == err
}

func ParseLink(text string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(text))
	if nil != err {
		return Link{}, ErrUnsupportedLink
	}

	switch u.Scheme {
	case "https", "http":
	default:
		return Link{}, ErrUnsupportedLink
	}

	switch strings.TrimPrefix(u.Host, "www.") {
	case "music.yandex.ru", "music.yandex.com", "music.yandex.by", "music.yandex.kz", "music.yandex.uz":
	default:
		return Link{}, ErrUnsupportedLink
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(parts) == 4 && parts[0] == "album" && parts[2] == "track":
		if parts[1] == "" || parts[3] == "" {
			return Link{}, ErrUnsupportedLink
		}
		return Link{Kind: KindTrack, ID: ID(parts[3]), AlbumID: ID(parts[1]), Owner: "", PlaylistKind: 0}, nil
	case len(parts) == 2 && parts[0] == "track" && parts[1] != "":
		return Link{Kind: KindTrack, ID: ID(parts[1]), AlbumID: "", Owner: "", PlaylistKind: 0}, nil
	case len(parts) == 2 && parts[0] == "album" && parts[1] != "":
		return Link{Kind: KindAlbum, ID: ID(parts[1]), AlbumID: "", Owner: "", PlaylistKind: 0}, nil
	case len(parts) >= 2 && len(parts) <= 3 && parts[0] == "artist" && parts[1] != "":
		return Link{Kind: KindArtist, ID: ID(parts[1]), AlbumID: "", Owner: "", PlaylistKind: 0}, nil
	case len(parts) == 4 && parts[0] == "users" && parts[2] == "playlists" && parts[1] != "":
		kind, err := strconv.Atoi(parts[3])
		if nil != err || kind < 0 {
			return Link{}, ErrUnsupportedLink
		}
		return Link{Kind: KindPlaylist, ID: "", AlbumID: "", Owner: parts[1], PlaylistKind: kind}, nil
	default:
		return Link{}, ErrUnsupportedLink
	}
}
