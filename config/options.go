package config

import "time"

var (
	AccountRequestTimeout       = 5 * time.Second
	SearchRequestTimeout        = 10 * time.Second
	CatalogRequestTimeout       = 10 * time.Second
	PlaylistEditRequestTimeout  = 10 * time.Second
	DownloadLinkRequestTimeout  = 10 * time.Second
	CoverDownloadTimeout        = 15 * time.Second
	TrackDownloadTimeout        = 5 * time.Minute
	TrackDownloadMaxElapsedTime = 10 * time.Minute
)
