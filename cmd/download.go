package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/config"
	"github.com/xeptore/yamusic/yandex"
	"github.com/xeptore/yamusic/yandex/download"
	"github.com/xeptore/yamusic/yandex/fs"
)

func downloadCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"d"},
		Usage:     "Download tracks, albums, artists or playlists",
		ArgsUsage: "<link|id>...",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: yandex.KindTrack.String(), Usage: "Kind of the bare ids given: track, album, artist or playlist (owner:kind)"},
			//nolint:exhaustruct
			&cli.StringFlag{Name: "dir", Usage: "Download directory, defaults to the configured one"},
			//nolint:exhaustruct
			&cli.IntFlag{Name: "bitrate", Aliases: []string{"b"}, Usage: "Bitrate in kbps, defaults to the configured one"},
		},
		Action: action(func(ctx context.Context, e *env) error {
			if e.cli.NArg() == 0 {
				return errors.New("at least one link or id is required")
			}
			kind, err := yandex.ParseKind(e.cli.String("kind"))
			if nil != err {
				return err
			}
			targets := make([]yandex.Link, 0, e.cli.NArg())
			for _, arg := range e.cli.Args().Slice() {
				target, err := downloadTarget(arg, kind)
				if nil != err {
					return err
				}
				targets = append(targets, target)
			}

			dirPath := e.cli.String("dir")
			if dirPath == "" {
				dirPath = e.cfg.DownloadDir
			}
			dir := fs.From(dirPath)
			if err := dir.Create(); nil != err {
				return err
			}

			bitrate := e.cfg.Bitrate
			if b := e.cli.Int("bitrate"); b > 0 {
				bitrate = b
			}
			d := download.NewDownloader(
				e.client,
				dir,
				download.WithBitrate(bitrate),
				download.WithConcurrency(e.cfg.DownloadConcurrency),
				download.WithAttempts(e.cfg.DownloadAttempts),
				download.WithLogger(e.logger.With().Str("module", "downloader").Logger()),
			)
			defer d.Close()

			for _, target := range targets {
				logger := e.logger.With().Str("kind", target.Kind.String()).Logger()
				logger.Info().Msg("Starting download")
				caption, err := downloadOne(ctx, e, d, target)
				if nil != err {
					return err
				}
				logger.Info().Str("caption", caption).Msg("Download finished")
			}
			return nil
		}),
	}
}

// downloadTarget reads arg as a web player link, falling back to a bare id of kind.
func downloadTarget(arg string, kind yandex.Kind) (yandex.Link, error) {
	arg = strings.TrimSpace(arg)
	if link, err := yandex.ParseLink(arg); nil == err {
		return link, nil
	}
	switch kind {
	case yandex.KindTrack:
		id, err := trackID(arg)
		if nil != err {
			return yandex.Link{}, err
		}
		return yandex.Link{Kind: kind, ID: id}, nil //nolint:exhaustruct
	case yandex.KindPlaylist:
		key, err := yandex.ParsePlaylistKey(arg)
		if nil != err {
			return yandex.Link{}, err
		}
		return yandex.Link{Kind: kind, Owner: key.Owner, PlaylistKind: key.Kind}, nil //nolint:exhaustruct
	default:
		if arg == "" || strings.ContainsAny(arg, ":/ ") {
			return yandex.Link{}, fmt.Errorf("invalid %s id %q", kind, arg)
		}
		return yandex.Link{Kind: kind, ID: yandex.ID(arg)}, nil //nolint:exhaustruct
	}
}

func downloadOne(ctx context.Context, e *env, d *download.Downloader, target yandex.Link) (string, error) {
	flawP := flaw.P{"kind": target.Kind.String(), "id": target.ID, "owner": target.Owner, "playlist_kind": target.PlaylistKind}
	switch target.Kind {
	case yandex.KindTrack:
		track, err := d.Track(ctx, target.ID)
		if nil != err {
			return "", withFlawP(err, flawP)
		}
		return track.Caption, nil
	case yandex.KindAlbum:
		album, err := d.Album(ctx, target.ID)
		if nil != err {
			return "", withFlawP(err, flawP)
		}
		return album.Caption, nil
	case yandex.KindPlaylist:
		playlist, err := d.Playlist(ctx, target.Owner, target.PlaylistKind)
		if nil != err {
			return "", withFlawP(err, flawP)
		}
		return playlist.Caption, nil
	case yandex.KindArtist:
		artist, err := fetchArtist(ctx, e, target.ID)
		if nil != err {
			return "", withFlawP(err, flawP)
		}
		tracks, err := artist.AllTracks(ctx)
		if nil != err {
			return "", withFlawP(err, flawP)
		}
		ids := make([]yandex.ID, len(tracks))
		for i, t := range tracks {
			ids[i] = t.ID
		}
		if _, err := d.Tracks(ctx, ids); nil != err {
			return "", withFlawP(err, flawP)
		}
		return artist.Name, nil
	default:
		panic("unsupported link kind to download: " + target.Kind.String())
	}
}

func fetchArtist(ctx context.Context, e *env, id yandex.ID) (*yandex.Artist, error) {
	ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
	defer cancel()
	return e.client.Artist(ctx, id)
}
