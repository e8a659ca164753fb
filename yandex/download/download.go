// Package download saves tracks, with their cover and metadata, to a
// download directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/yamusic/cache"
	"github.com/xeptore/yamusic/config"
	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/log"
	"github.com/xeptore/yamusic/must"
	"github.com/xeptore/yamusic/ratelimit"
	"github.com/xeptore/yamusic/yandex"
	"github.com/xeptore/yamusic/yandex/api"
	"github.com/xeptore/yamusic/yandex/downloadinfo"
	"github.com/xeptore/yamusic/yandex/fs"
)

type Downloader struct {
	client      *yandex.Client
	dir         fs.DownloadDir
	bitrate     int
	concurrency int
	attempts    int
	logger      zerolog.Logger
	pause       func() time.Duration
	newBackOff  func() backoff.BackOff
	covers      *cache.Covers
}

type Option func(d *Downloader)

func WithBitrate(kbps int) Option {
	return func(d *Downloader) { d.bitrate = kbps }
}

func WithConcurrency(n int) Option {
	return func(d *Downloader) { d.concurrency = n }
}

// WithAttempts sets how many times a track download is tried before giving up.
func WithAttempts(n int) Option {
	return func(d *Downloader) { d.attempts = n }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Downloader) { d.logger = logger }
}

// WithPause sets the function that decides how long to wait before each
// download attempt starts.
func WithPause(pause func() time.Duration) Option {
	return func(d *Downloader) { d.pause = pause }
}

// WithBackOff sets the policy between failed attempts. The attempt limit is
// applied on top of it.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(d *Downloader) { d.newBackOff = newBackOff }
}

func NewDownloader(client *yandex.Client, dir fs.DownloadDir, opts ...Option) *Downloader {
	d := &Downloader{
		client:      client,
		dir:         dir,
		bitrate:     downloadinfo.DefaultBitrate,
		concurrency: ratelimit.TrackDownloadConcurrency,
		attempts:    ratelimit.TrackDownloadAttempts,
		logger:      zerolog.Nop(),
		pause:       ratelimit.TrackDownloadPause,
		newBackOff:  defaultBackOff,
		covers:      cache.NewCovers(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Close releases the cover cache.
func (d *Downloader) Close() {
	d.covers.Stop()
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = config.TrackDownloadMaxElapsedTime
	return b
}

// Track downloads a single track, retrying failed attempts.
func (d *Downloader) Track(ctx context.Context, id yandex.ID) (*fs.StoredTrack, error) {
	track, err := d.fetchTrack(ctx, id)
	if nil != err {
		return nil, err
	}
	if err := d.dir.Create(); nil != err {
		return nil, err
	}
	return d.retry(ctx, track)
}

// Tracks downloads tracks concurrently. The first failure cancels the rest.
func (d *Downloader) Tracks(ctx context.Context, ids []yandex.ID) ([]*fs.StoredTrack, error) {
	reqCtx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
	defer cancel()

	tracks, err := d.client.Tracks(reqCtx, ids)
	if nil != err {
		return nil, err
	}
	if err := d.dir.Create(); nil != err {
		return nil, err
	}
	return d.batch(ctx, tracks)
}

// Album downloads every track of the album and writes the album info file.
func (d *Downloader) Album(ctx context.Context, id yandex.ID) (*fs.StoredAlbum, error) {
	reqCtx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
	defer cancel()

	album, err := d.client.Album(reqCtx, id)
	if nil != err {
		return nil, err
	}
	tracks, err := album.Tracks(reqCtx)
	if nil != err {
		return nil, err
	}

	if err := d.dir.Create(); nil != err {
		return nil, err
	}
	if _, err := d.batch(ctx, tracks); nil != err {
		return nil, err
	}

	info := fs.StoredAlbum{
		ID:      album.ID,
		Title:   album.Title,
		Artists: artistNames(album.Artists),
		Year:    album.Year,
		Tracks:  trackIDs(tracks),
		Caption: album.String(),
	}
	if err := d.dir.Album(string(album.ID)).Write(info); nil != err {
		return nil, err
	}
	return &info, nil
}

// Playlist downloads every hydrated track of the playlist and writes the
// playlist info file.
func (d *Downloader) Playlist(ctx context.Context, owner string, kind int) (*fs.StoredPlaylist, error) {
	reqCtx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
	defer cancel()

	playlist, err := d.client.Playlist(reqCtx, owner, kind)
	if nil != err {
		return nil, err
	}

	tracks := playlist.Tracks()
	if err := d.dir.Create(); nil != err {
		return nil, err
	}
	if _, err := d.batch(ctx, tracks); nil != err {
		return nil, err
	}

	key := playlist.Key()
	info := fs.StoredPlaylist{
		Owner:    key.Owner,
		Kind:     key.Kind,
		Revision: playlist.Revision,
		Title:    playlist.Title,
		Tracks:   trackIDs(tracks),
		Caption:  playlist.Title,
	}
	if err := d.dir.Playlist(key.Owner, key.Kind).Write(info); nil != err {
		return nil, err
	}
	return &info, nil
}

func (d *Downloader) fetchTrack(ctx context.Context, id yandex.ID) (*yandex.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, config.CatalogRequestTimeout)
	defer cancel()
	return d.client.Track(ctx, id)
}

func (d *Downloader) batch(ctx context.Context, tracks []*yandex.Track) ([]*fs.StoredTrack, error) {
	var (
		wg, wgCtx = errgroup.WithContext(ctx)
		out       = make([]*fs.StoredTrack, len(tracks))
	)
	wg.SetLimit(max(d.concurrency, 1))
	for i, track := range tracks {
		wg.Go(func() error {
			info, err := d.retry(wgCtx, track)
			if nil != err {
				return err
			}
			out[i] = info
			return nil
		})
	}
	if err := wg.Wait(); nil != err {
		return nil, err
	}
	return out, nil
}

// retry runs download attempts until one succeeds, the attempts are used up,
// or an error that another attempt cannot fix occurs. Every attempt resolves
// a new link since links expire.
func (d *Downloader) retry(ctx context.Context, track *yandex.Track) (*fs.StoredTrack, error) {
	trackFs := d.dir.Track(string(track.ID))
	if trackFs.Complete() {
		if info, err := trackFs.InfoFile.Read(); nil == err {
			d.logger.Debug().Str("track_id", string(track.ID)).Msg("Track is already downloaded")
			return info, nil
		}
	}

	var (
		info    *fs.StoredTrack
		attempt int
	)
	policy := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), uint64(max(d.attempts, 1)-1)), ctx) //nolint:gosec
	err := backoff.Retry(
		func() error {
			attempt++
			if err := sleep(ctx, d.pause()); nil != err {
				return backoff.Permanent(err)
			}

			var err error
			info, err = d.download(ctx, track, trackFs)
			if nil == err {
				return nil
			}
			if !isRetryable(ctx, err) {
				return backoff.Permanent(err)
			}

			d.logger.
				Warn().
				Func(log.Flaw(err)).
				Str("track_id", string(track.ID)).
				Int("attempt", attempt).
				Msg("Track download attempt failed")
			return err
		},
		policy,
	)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return info, nil
}

func (d *Downloader) download(ctx context.Context, track *yandex.Track, trackFs fs.Track) (*fs.StoredTrack, error) {
	linkCtx, cancel := context.WithTimeout(ctx, config.DownloadLinkRequestTimeout)
	defer cancel()

	link, err := track.DownloadLink(linkCtx, d.bitrate)
	if nil != err {
		return nil, err
	}

	var (
		wg, wgCtx = errgroup.WithContext(ctx)
		size      int64
	)
	wg.Go(func() error {
		n, err := d.downloadAudio(wgCtx, link, trackFs.Audio)
		if nil != err {
			return err
		}
		size = n
		return nil
	})
	wg.Go(func() error {
		return d.downloadCover(wgCtx, track.CoverURL(""), trackFs.Cover)
	})
	if err := wg.Wait(); nil != err {
		return nil, err
	}

	info := storedTrack(track, d.bitrate, size)
	if err := trackFs.InfoFile.Write(info); nil != err {
		return nil, err
	}
	return &info, nil
}

func (d *Downloader) downloadAudio(ctx context.Context, link string, audio fs.Audio) (n int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, config.TrackDownloadTimeout)
	defer cancel()

	body, size, err := d.client.State().HTTP().Stream(ctx, link)
	if nil != err {
		return 0, err
	}
	defer func() {
		if closeErr := body.Close(); nil != closeErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close audio stream: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsFlaw(err):
				err = must.BeFlaw(err).Join(closeErr)
			}
		}
	}()

	n, err = audio.Write(body, size)
	if nil != err {
		if errutil.IsContext(ctx) {
			return 0, ctx.Err()
		}
		return 0, err
	}
	return n, nil
}

func (d *Downloader) downloadCover(ctx context.Context, link string, cover fs.Cover) error {
	if link == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.CoverDownloadTimeout)
	defer cancel()

	b, err := d.covers.Fetch(link, cache.DefaultCoverTTL, func() ([]byte, error) {
		return d.client.State().HTTP().Document(ctx, link)
	})
	if nil != err {
		// A track without a usable cover is still worth keeping.
		if httpErr, ok := errutil.As[*api.HTTPError](err); ok && httpErr.StatusCode == http.StatusNotFound {
			d.logger.Debug().Str("url", link).Msg("Track cover not found")
			return nil
		}
		return err
	}
	return cover.Write(b)
}

// isRetryable reports whether another attempt may succeed after err.
func isRetryable(ctx context.Context, err error) bool {
	if errutil.IsContext(ctx) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if _, ok := errutil.As[*downloadinfo.BitrateNotFoundError](err); ok {
		return false
	}
	if httpErr, ok := errutil.As[*api.HTTPError](err); ok {
		switch code := httpErr.StatusCode; {
		case code == http.StatusTooManyRequests:
			return !httpErr.EdgeBlocked
		case code >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func storedTrack(track *yandex.Track, bitrate int, size int64) fs.StoredTrack {
	info := fs.StoredTrack{
		ID:           track.ID,
		Title:        track.Title,
		Artists:      artistNames(track.Artists),
		Album:        "",
		AlbumID:      "",
		Year:         0,
		DurationMs:   track.DurationMs,
		Bitrate:      bitrate,
		Size:         size,
		URL:          track.URL(),
		Caption:      track.String(),
		DownloadedAt: time.Now().UTC(),
	}
	if len(track.Albums) > 0 && nil != track.Albums[0] {
		album := track.Albums[0]
		info.Album, info.AlbumID, info.Year = album.Title, album.ID, album.Year
	}
	return info
}

func artistNames(artists []*yandex.Artist) []string {
	return lo.FilterMap(artists, func(a *yandex.Artist, _ int) (string, bool) {
		if nil == a {
			return "", false
		}
		return a.Name, true
	})
}

func trackIDs(tracks []*yandex.Track) []yandex.ID {
	return lo.Map(tracks, func(t *yandex.Track, _ int) yandex.ID { return t.ID })
}
