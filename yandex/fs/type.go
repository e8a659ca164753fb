package fs

import (
	"time"

	"github.com/xeptore/yamusic/yandex"
)

// StoredTrack is the metadata written next to a downloaded track.
type StoredTrack struct {
	ID           yandex.ID `json:"id"`
	Title        string    `json:"title"`
	Artists      []string  `json:"artists"`
	Album        string    `json:"album,omitempty"`
	AlbumID      yandex.ID `json:"album_id,omitempty"`
	Year         int       `json:"year,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	Bitrate      int       `json:"bitrate_kbps"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	Caption      string    `json:"caption"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

type StoredAlbum struct {
	ID      yandex.ID   `json:"id"`
	Title   string      `json:"title"`
	Artists []string    `json:"artists"`
	Year    int         `json:"year,omitempty"`
	Tracks  []yandex.ID `json:"tracks"`
	Caption string      `json:"caption"`
}

type StoredPlaylist struct {
	Owner    string      `json:"owner"`
	Kind     int         `json:"kind"`
	Revision int         `json:"revision"`
	Title    string      `json:"title"`
	Tracks   []yandex.ID `json:"tracks"`
	Caption  string      `json:"caption"`
}
