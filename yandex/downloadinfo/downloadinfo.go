// Package downloadinfo turns a track id into a signed media link.
//
// Resolution has two phases: the API lists the available encodings of the
// track, each pointing to a short-lived XML document, and that document holds
// the parts the final link is assembled and signed from. Links expire, so
// nothing here is cached.
package downloadinfo

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/yandex/api"
)

const (
	DefaultBitrate = 192
	SignSalt       = "XGRlBW9FXlekgbPrRHuSiA"
)

type Entry struct {
	Codec           string `json:"codec"`
	Gain            bool   `json:"gain"`
	Preview         bool   `json:"preview"`
	DownloadInfoURL string `json:"downloadInfoUrl"`
	Direct          bool   `json:"direct"`
	BitrateInKbps   int    `json:"bitrateInKbps"`
}

type BitrateNotFoundError struct {
	Bitrate   int
	Available []int
}

func (e *BitrateNotFoundError) Error() string {
	return fmt.Sprintf("no download option with bitrate %d kbps (available: %v)", e.Bitrate, e.Available)
}

// Select returns the first entry whose bitrate equals bitrate exactly.
func Select(entries []Entry, bitrate int) (*Entry, error) {
	if e, ok := lo.Find(entries, func(e Entry) bool { return e.BitrateInKbps == bitrate }); ok {
		return &e, nil
	}
	available := lo.Map(entries, func(e Entry, _ int) int { return e.BitrateInKbps })
	return nil, &BitrateNotFoundError{Bitrate: bitrate, Available: available}
}

type Document struct {
	XMLName xml.Name `xml:"download-info"`
	Host    string   `xml:"host"`
	Path    string   `xml:"path"`
	TS      string   `xml:"ts"`
	Region  string   `xml:"region"`
	S       string   `xml:"s"`
}

func Parse(b []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(b, &doc); nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP(), "body": string(b)}
		return nil, flaw.From(fmt.Errorf("failed to decode download info document: %v", err)).Append(flawP)
	}

	fields := [][2]string{{"host", doc.Host}, {"path", doc.Path}, {"ts", doc.TS}, {"s", doc.S}}
	missing := lo.FilterMap(fields, func(f [2]string, _ int) (string, bool) { return f[0], f[1] == "" })
	if len(missing) > 0 {
		flawP := flaw.P{"missing": missing, "body": string(b)}
		return nil, flaw.From(errors.New("download info document is missing required fields")).Append(flawP)
	}
	if !strings.HasPrefix(doc.Path, "/") {
		flawP := flaw.P{"path": doc.Path}
		return nil, flaw.From(errors.New("download info document path is not absolute")).Append(flawP)
	}

	return &doc, nil
}

// Sign computes the link signature. path must start with a slash, which is
// not part of the signed text.
func Sign(path, s string) string {
	sum := md5.Sum([]byte(SignSalt + strings.TrimPrefix(path, "/") + s)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func (d *Document) Link() string {
	return fmt.Sprintf("https://%s/get-mp3/%s/%s%s", d.Host, Sign(d.Path, d.S), d.TS, d.Path)
}

// Fetcher performs the two requests link resolution needs.
// *api.HTTPClient implements it.
type Fetcher interface {
	DownloadInfo(ctx context.Context, trackID api.ID) (*api.Response, error)
	DownloadInfoDocument(ctx context.Context, link string) ([]byte, error)
}

type Resolver struct {
	fetcher Fetcher
}

func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Entries lists the encodings available for the track.
func (r *Resolver) Entries(ctx context.Context, trackID api.ID) ([]Entry, error) {
	resp, err := r.fetcher.DownloadInfo(ctx, trackID)
	if nil != err {
		return nil, err
	}
	var entries []Entry
	if err := resp.Decode(&entries); nil != err {
		return nil, err
	}
	return entries, nil
}

// Resolve returns a fresh signed link to the track encoded at bitrate.
func (r *Resolver) Resolve(ctx context.Context, trackID api.ID, bitrate int) (string, error) {
	entries, err := r.Entries(ctx, trackID)
	if nil != err {
		return "", err
	}

	entry, err := Select(entries, bitrate)
	if nil != err {
		return "", err
	}

	b, err := r.fetcher.DownloadInfoDocument(ctx, entry.DownloadInfoURL)
	if nil != err {
		return "", err
	}

	doc, err := Parse(b)
	if nil != err {
		return "", err
	}
	return doc.Link(), nil
}
