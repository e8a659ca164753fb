package yandex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

var ErrInvalidTrackRef = errors.New("invalid track reference")

// TrackRef addresses a track within a playlist edit.
type TrackRef struct {
	ID      ID `json:"id"`
	AlbumID ID `json:"albumId"`
}

func (r TrackRef) String() string {
	return string(r.ID) + ":" + string(r.AlbumID)
}

// ParseTrackRef parses an "id:albumId" reference.
func ParseTrackRef(s string) (TrackRef, error) {
	id, albumID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || id == "" || albumID == "" || strings.Contains(albumID, ":") {
		return TrackRef{}, fmt.Errorf("%w: %q, expected id:albumId", ErrInvalidTrackRef, s)
	}
	return TrackRef{ID: ID(id), AlbumID: ID(albumID)}, nil
}

// ParseTrackRefs parses a comma separated list of "id:albumId" references.
func ParseTrackRefs(s string) (TrackRefs, error) {
	parts := strings.Split(s, ",")
	out := make(TrackRefs, 0, len(parts))
	for _, p := range parts {
		ref, err := ParseTrackRef(p)
		if nil != err {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

type TrackRefs []TrackRef

// InsertItem is anything a playlist insert accepts: TrackRef, TrackRefs,
// *Track or *ShortTrack.
type InsertItem interface {
	trackRefs() ([]TrackRef, error)
}

func (r TrackRef) trackRefs() ([]TrackRef, error) {
	if r.ID == "" || r.AlbumID == "" {
		return nil, fmt.Errorf("%w: both id and album id are required, got %q:%q", ErrInvalidTrackRef, r.ID, r.AlbumID)
	}
	return []TrackRef{r}, nil
}

func (r TrackRefs) trackRefs() ([]TrackRef, error) {
	out := make([]TrackRef, 0, len(r))
	for _, ref := range r {
		refs, err := ref.trackRefs()
		if nil != err {
			return nil, err
		}
		out = append(out, refs...)
	}
	return out, nil
}

func (t *Track) trackRefs() ([]TrackRef, error) {
	if nil == t {
		return nil, fmt.Errorf("%w: nil track", ErrInvalidTrackRef)
	}
	ref, err := t.Ref()
	if nil != err {
		return nil, err
	}
	return []TrackRef{ref}, nil
}

func (t *ShortTrack) trackRefs() ([]TrackRef, error) {
	if nil == t {
		return nil, fmt.Errorf("%w: nil track", ErrInvalidTrackRef)
	}
	return t.Ref().trackRefs()
}

type diffOp string

const (
	opInsert diffOp = "insert"
	opDelete diffOp = "delete"
)

type insertOp struct {
	Op     diffOp     `json:"op"`
	At     int        `json:"at"`
	Tracks []TrackRef `json:"tracks"`
}

type deleteOp struct {
	Op   diffOp `json:"op"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Diff is an ordered list of playlist edit operations. Positions of later
// operations refer to the playlist as left by the earlier ones. The first
// invalid operation poisons the diff; its error is reported by Err and
// MarshalJSON.
type Diff struct {
	ops []any
	err error
}

func NewDiff() *Diff {
	return &Diff{ops: nil, err: nil}
}

// Insert adds items at position at.
func (d *Diff) Insert(at int, items ...InsertItem) *Diff {
	if nil != d.err {
		return d
	}
	if at < 0 {
		d.err = fmt.Errorf("insert position must not be negative, got %d", at)
		return d
	}
	if len(items) == 0 {
		d.err = errors.New("insert requires at least one track")
		return d
	}

	var tracks []TrackRef
	for _, item := range items {
		if nil == item {
			d.err = fmt.Errorf("%w: nil insert item", ErrInvalidTrackRef)
			return d
		}
		refs, err := item.trackRefs()
		if nil != err {
			d.err = err
			return d
		}
		tracks = append(tracks, refs...)
	}
	d.ops = append(d.ops, insertOp{Op: opInsert, At: at, Tracks: tracks})
	return d
}

// Delete removes the half-open range [from, to).
func (d *Diff) Delete(from, to int) *Diff {
	if nil != d.err {
		return d
	}
	if from < 0 || to <= from {
		d.err = fmt.Errorf("invalid delete range [%d, %d)", from, to)
		return d
	}
	d.ops = append(d.ops, deleteOp{Op: opDelete, From: from, To: to})
	return d
}

// DeleteAt removes the entry at index i.
func (d *Diff) DeleteAt(i int) *Diff {
	return d.Delete(i, i+1)
}

func (d *Diff) Len() int {
	return len(d.ops)
}

func (d *Diff) Err() error {
	return d.err
}

func (d *Diff) MarshalJSON() ([]byte, error) {
	if nil != d.err {
		return nil, d.err
	}
	if len(d.ops) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(d.ops)
}
