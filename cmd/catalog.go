package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/xeptore/yamusic/config"
	"github.com/xeptore/yamusic/yandex"
	"github.com/xeptore/yamusic/yandex/api"
)

var searchTypes = []api.SearchType{api.SearchAll, api.SearchTrack, api.SearchAlbum, api.SearchArtist, api.SearchPlaylist}

func whoamiCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the account the token belongs to",
		Action: action(func(ctx context.Context, e *env) error {
			ctx, cancel := context.WithTimeout(ctx, config.AccountRequestTimeout)
			defer cancel()

			account, err := e.client.Identify(ctx)
			if nil != err {
				return err
			}
			e.printf("uid:     %s\n", account.UID)
			e.printf("login:   %s\n", account.Login)
			e.printf("name:    %s\n", lo.CoalesceOrEmpty(account.DisplayName, account.FullName))
			e.printf("region:  %d\n", account.Region)
			e.printf("plus:    %t\n", account.HasPlus)
			return nil
		}),
	}
}

func searchCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: string(api.SearchAll), Usage: "One of all, track, album, artist or playlist"},
			//nolint:exhaustruct
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 0, Usage: "Zero based result page"},
		},
		Action: action(func(ctx context.Context, e *env) error {
			text := strings.Join(e.cli.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("search text is required")
			}
			typ := api.SearchType(e.cli.String("type"))
			if !lo.Contains(searchTypes, typ) {
				return fmt.Errorf("unsupported search type %q", typ)
			}

			ctx, cancel := context.WithTimeout(ctx, config.SearchRequestTimeout)
			defer cancel()

			res, err := e.client.Search(ctx, text, typ, e.cli.Int("page"))
			if nil != err {
				return err
			}
			if res.MisspellCorrected {
				e.printf("showing results for %q instead of %q\n", res.Text, res.MisspellOriginal)
			}
			if nil != res.Best {
				e.printf("best %s: %s\n", res.Best.EntityKind(), res.Best.URL())
			} else if res.UnsupportedBest != "" {
				e.logger.Debug().Str("kind", res.UnsupportedBest).Msg("Skipped best match of unsupported kind")
			}
			printSection(e, "tracks", res.Tracks)
			printSection(e, "albums", res.Albums)
			printSection(e, "artists", res.Artists)
			printSection(e, "playlists", res.Playlists)
			return nil
		}),
	}
}

func printSection[T interface {
	fmt.Stringer
	URL() string
}](e *env, title string, items []T) {
	if len(items) == 0 {
		return
	}
	e.printf("%s:\n", title)
	for _, item := range items {
		e.printf("  %s  %s\n", item, item.URL())
	}
}

func trackCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "track",
		Usage:     "Show track details",
		ArgsUsage: "<id|link>...",
		Action: action(func(ctx context.Context, e *env) error {
			ids, err := trackIDs(e.cli.Args().Slice())
			if nil != err {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
			defer cancel()

			tracks, err := e.client.Tracks(ctx, ids)
			if nil != err {
				return err
			}
			for _, t := range tracks {
				e.printf("%s\n", t)
				e.printf("  id:        %s\n", t.ID)
				e.printf("  duration:  %s\n", t.Duration().Round(time.Second))
				if albumID, ok := t.AlbumID(); ok {
					e.printf("  album:     %s\n", albumID)
				}
				e.printf("  available: %t\n", t.Available)
				e.printf("  url:       %s\n", t.URL())
			}
			return nil
		}),
	}
}

func linkCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "link",
		Usage:     "Print a direct download link of a track",
		ArgsUsage: "<id|link>",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.IntFlag{Name: "bitrate", Aliases: []string{"b"}, Usage: "Bitrate in kbps, defaults to the configured one"},
		},
		Action: action(func(ctx context.Context, e *env) error {
			if e.cli.NArg() != 1 {
				return errors.New("exactly one track is required")
			}
			id, err := trackID(e.cli.Args().First())
			if nil != err {
				return err
			}
			bitrate := lo.CoalesceOrEmpty(e.cli.Int("bitrate"), e.cfg.Bitrate)

			ctx, cancel := context.WithTimeout(ctx, config.DownloadLinkRequestTimeout)
			defer cancel()

			link, err := e.client.DownloadLink(ctx, id, bitrate)
			if nil != err {
				return err
			}
			e.printf("%s\n", link)
			return nil
		}),
	}
}

func likeCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "like",
		Usage:     "Add tracks to the liked tracks",
		ArgsUsage: "<id|link>...",
		Action: action(func(ctx context.Context, e *env) error {
			ids, err := trackIDs(e.cli.Args().Slice())
			if nil != err {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
			defer cancel()

			if err := e.client.LikeTracks(ctx, ids); nil != err {
				return err
			}
			e.logger.Info().Int("count", len(ids)).Msg("Tracks liked")
			return nil
		}),
	}
}

func dislikeCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "dislike",
		Usage:     "Mark tracks as disliked",
		ArgsUsage: "<id|link>...",
		Action: action(func(ctx context.Context, e *env) error {
			ids, err := trackIDs(e.cli.Args().Slice())
			if nil != err {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
			defer cancel()

			if err := e.client.DislikeTracks(ctx, ids); nil != err {
				return err
			}
			e.logger.Info().Int("count", len(ids)).Msg("Tracks disliked")
			return nil
		}),
	}
}

func likesCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "likes",
		Usage: "List liked tracks",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.BoolFlag{Name: "resolve", Aliases: []string{"r"}, Usage: "Fetch titles and artists of the tracks"},
		},
		Action: action(func(ctx context.Context, e *env) error {
			ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
			defer cancel()

			likes, err := e.client.LikedTracks(ctx)
			if nil != err {
				return err
			}
			if !e.cli.Bool("resolve") {
				for _, t := range likes {
					e.printf("%s  %s\n", t.Ref(), t.URL())
				}
				return nil
			}

			ids := lo.Map(likes, func(t *yandex.ShortTrack, _ int) yandex.ID { return t.ID })
			tracks, err := e.client.Tracks(ctx, ids)
			if nil != err {
				return err
			}
			for _, t := range tracks {
				e.printf("%s  %s\n", t, t.URL())
			}
			return nil
		}),
	}
}

// trackID accepts a web player track link, an "id:albumId" reference or a bare id.
func trackID(arg string) (yandex.ID, error) {
	arg = strings.TrimSpace(arg)
	if yandex.IsLink(arg) {
		link, err := yandex.ParseLink(arg)
		if nil != err {
			return "", err
		}
		if link.Kind != yandex.KindTrack {
			return "", fmt.Errorf("%s link given where a track is expected: %s", link.Kind, arg)
		}
		return link.ID, nil
	}
	if ref, err := yandex.ParseTrackRef(arg); nil == err {
		return ref.ID, nil
	}
	if arg == "" || strings.ContainsAny(arg, ":/ ") {
		return "", fmt.Errorf("invalid track %q", arg)
	}
	return yandex.ID(arg), nil
}

func trackIDs(args []string) ([]yandex.ID, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one track is required")
	}
	ids := make([]yandex.ID, 0, len(args))
	for _, arg := range args {
		id, err := trackID(arg)
		if nil != err {
			return nil, err
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}
