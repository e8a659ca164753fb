package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"
	"gopkg.in/matryer/try.v1"

	"github.com/xeptore/yamusic/config"
	"github.com/xeptore/yamusic/ctxutil"
	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/must"
	"github.com/xeptore/yamusic/yandex"
	"github.com/xeptore/yamusic/yandex/api"
)

const (
	editMaxAttempts = 3
	// editGracePeriod keeps an in-flight edit alive for a while after an interrupt.
	editGracePeriod = 5 * time.Second
)

func playlistCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Subcommands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:      "list",
				Usage:     "List playlists of a user, the token owner by default",
				ArgsUsage: "[owner]",
				Action: action(func(ctx context.Context, e *env) error {
					ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
					defer cancel()

					playlists, err := e.client.UserPlaylists(ctx, e.cli.Args().First())
					if nil != err {
						return err
					}
					for _, p := range playlists {
						e.printf("%s  %s (%d tracks, %s)  %s\n", p.Key(), p.Title, p.TrackCount, p.Visibility, p.URL())
					}
					return nil
				}),
			},
			//nolint:exhaustruct
			{
				Name:      "show",
				Usage:     "Show a playlist with its tracks",
				ArgsUsage: "<owner:kind|link>",
				Action: action(func(ctx context.Context, e *env) error {
					key, err := playlistKeyArg(e.cli)
					if nil != err {
						return err
					}

					ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
					defer cancel()

					p, err := e.client.Playlist(ctx, key.Owner, key.Kind)
					if nil != err {
						return err
					}
					e.printf("%s\n", p)
					e.printf("  revision:   %d\n", p.Revision)
					e.printf("  visibility: %s\n", p.Visibility)
					e.printf("  url:        %s\n", p.URL())
					printEntries(e.cli.App.Writer, p.Entries)
					return nil
				}),
			},
			//nolint:exhaustruct
			{
				Name:      "create",
				Usage:     "Create a playlist",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.BoolFlag{Name: "private", Usage: "Create a private playlist"},
				},
				Action: action(func(ctx context.Context, e *env) error {
					if e.cli.NArg() != 1 {
						return errors.New("exactly one title is required")
					}
					visibility := api.VisibilityPublic
					if e.cli.Bool("private") {
						visibility = api.VisibilityPrivate
					}

					ctx, cancel := ctxutil.WithGrace(ctx, editGracePeriod)
					defer cancel()
					ctx, cancel = context.WithTimeout(ctx, config.PlaylistEditRequestTimeout)
					defer cancel()

					p, err := e.client.CreatePlaylist(ctx, e.cli.Args().First(), visibility)
					if nil != err {
						return err
					}
					e.printf("%s  %s\n", p.Key(), p.URL())
					return nil
				}),
			},
			//nolint:exhaustruct
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				ArgsUsage: "<owner:kind|link> <title>",
				Action: action(func(ctx context.Context, e *env) error {
					if e.cli.NArg() != 2 {
						return errors.New("playlist and title are required")
					}
					title := e.cli.Args().Get(1)
					return editPlaylist(ctx, e, func(ctx context.Context, p *yandex.Playlist) (*yandex.Playlist, error) {
						return p.Rename(ctx, title)
					})
				}),
			},
			//nolint:exhaustruct
			{
				Name:      "visibility",
				Usage:     "Change visibility of a playlist",
				ArgsUsage: "<owner:kind|link> <public|private>",
				Action: action(func(ctx context.Context, e *env) error {
					if e.cli.NArg() != 2 {
						return errors.New("playlist and visibility are required")
					}
					visibility := api.Visibility(e.cli.Args().Get(1))
					if visibility != api.VisibilityPublic && visibility != api.VisibilityPrivate {
						return fmt.Errorf("unsupported visibility %q", visibility)
					}
					return editPlaylist(ctx, e, func(ctx context.Context, p *yandex.Playlist) (*yandex.Playlist, error) {
						return p.SetVisibility(ctx, visibility)
					})
				}),
			},
			//nolint:exhaustruct
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				ArgsUsage: "<owner:kind|link>",
				Action: action(func(ctx context.Context, e *env) error {
					key, err := playlistKeyArg(e.cli)
					if nil != err {
						return err
					}

					ctx, cancel := ctxutil.WithGrace(ctx, editGracePeriod)
					defer cancel()
					ctx, cancel = context.WithTimeout(ctx, config.PlaylistEditRequestTimeout)
					defer cancel()

					p, err := e.client.Playlist(ctx, key.Owner, key.Kind)
					if nil != err {
						return err
					}
					if err := p.Delete(ctx); nil != err {
						return err
					}
					e.logger.Info().Str("playlist", key.String()).Msg("Playlist deleted")
					return nil
				}),
			},
			//nolint:exhaustruct
			{
				Name:      "insert",
				Usage:     "Insert tracks into a playlist",
				ArgsUsage: "<owner:kind|link> <id|link>...",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.IntFlag{Name: "at", Value: 0, Usage: "Position to insert at"},
				},
				Action: action(func(ctx context.Context, e *env) error {
					if e.cli.NArg() < 2 {
						return errors.New("playlist and at least one track are required")
					}
					ids, err := trackIDs(e.cli.Args().Tail())
					if nil != err {
						return err
					}
					at := e.cli.Int("at")
					if at < 0 {
						return fmt.Errorf("invalid position %d", at)
					}

					tracksCtx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
					defer cancel()
					tracks, err := e.client.Tracks(tracksCtx, ids)
					if nil != err {
						return err
					}
					items := lo.Map(tracks, func(t *yandex.Track, _ int) yandex.InsertItem { return t })

					return editPlaylist(ctx, e, func(ctx context.Context, p *yandex.Playlist) (*yandex.Playlist, error) {
						if at > len(p.Entries) {
							return nil, fmt.Errorf("position %d is past the end of the playlist of %d tracks", at, len(p.Entries))
						}
						return p.InsertTracks(ctx, at, items...)
					})
				}),
			},
			//nolint:exhaustruct
			{
				Name:      "remove",
				Usage:     "Remove tracks in the half-open range [from, to) from a playlist",
				ArgsUsage: "<owner:kind|link> <from> [to]",
				Action: action(func(ctx context.Context, e *env) error {
					if n := e.cli.NArg(); n < 2 || n > 3 {
						return errors.New("playlist and position range are required")
					}
					from, err := strconv.Atoi(e.cli.Args().Get(1))
					if nil != err {
						return fmt.Errorf("invalid start position: %v", err)
					}
					to := from + 1
					if e.cli.NArg() == 3 {
						if to, err = strconv.Atoi(e.cli.Args().Get(2)); nil != err {
							return fmt.Errorf("invalid end position: %v", err)
						}
					}
					return editPlaylist(ctx, e, func(ctx context.Context, p *yandex.Playlist) (*yandex.Playlist, error) {
						return p.DeleteTracks(ctx, from, to)
					})
				}),
			},
		},
	}
}

// printEntries numbers entries by their position in the playlist, which is
// what insert and remove take.
func printEntries(w io.Writer, entries []yandex.PlaylistEntry) {
	for i, entry := range entries {
		if nil == entry.Track {
			fmt.Fprintf(w, "  %3d. <track %s unavailable>\n", i, entry.ID)
			continue
		}
		fmt.Fprintf(w, "  %3d. %s\n", i, entry.Track)
	}
}

func playlistKeyArg(cliCtx *cli.Context) (yandex.PlaylistKey, error) {
	arg := cliCtx.Args().First()
	if link, err := yandex.ParseLink(arg); nil == err {
		if link.Kind != yandex.KindPlaylist {
			return yandex.PlaylistKey{}, fmt.Errorf("%s link given where a playlist is expected: %s", link.Kind, arg)
		}
		return link.PlaylistKey(), nil
	}
	return yandex.ParsePlaylistKey(arg)
}

// editPlaylist fetches the playlist named by the first argument and applies edit,
// refetching and reapplying when the server reports a newer revision.
func editPlaylist(ctx context.Context, e *env, edit func(context.Context, *yandex.Playlist) (*yandex.Playlist, error)) error {
	key, err := playlistKeyArg(e.cli)
	if nil != err {
		return err
	}
	flawP := flaw.P{"playlist": key.String()}

	ctx, cancel := ctxutil.WithGrace(ctx, editGracePeriod)
	defer cancel()

	var edited *yandex.Playlist
	err = try.Do(func(attempt int) (retry bool, err error) {
		attemptRemained := attempt < editMaxAttempts

		reqCtx, cancel := context.WithTimeout(ctx, config.PlaylistEditRequestTimeout)
		defer cancel()

		p, err := e.client.Playlist(reqCtx, key.Owner, key.Kind)
		if nil != err {
			return false, err
		}
		p, err = edit(reqCtx, p)
		if nil != err {
			if conflict, ok := errutil.As[*api.RevisionConflictError](err); ok {
				e.logger.Warn().Int("attempt", attempt).Int("revision", conflict.Revision).Msg("Playlist changed concurrently. Retrying")
				return attemptRemained, err
			}
			return false, err
		}
		edited = p
		return false, nil
	})
	if nil != err {
		return withFlawP(err, flawP)
	}

	e.printf("%s  revision %d  %s\n", edited, edited.Revision, edited.URL())
	return nil
}

func withFlawP(err error, p flaw.P) error {
	if errutil.IsFlaw(err) {
		return must.BeFlaw(err).Append(p)
	}
	return err
}
