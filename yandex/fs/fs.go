package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/must"
)

type DownloadDir string

func From(d string) DownloadDir {
	return DownloadDir(d)
}

func (dir DownloadDir) path() string {
	return string(dir)
}

func (dir DownloadDir) Create() error {
	if err := os.MkdirAll(dir.path(), 0o0755); nil != err {
		flawP := flaw.P{"dir": dir.path(), "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to create download directory: %v", err)).Append(flawP)
	}
	return nil
}

// Track returns the files of a downloaded track, all named by the track id.
func (dir DownloadDir) Track(id string) Track {
	base := filepath.Join(dir.path(), id)
	return Track{
		Audio:    Audio{Path: base + ".mp3"},
		InfoFile: InfoFile[StoredTrack]{Path: base + ".json"},
		Cover:    Cover{Path: base + ".jpg"},
	}
}

func (dir DownloadDir) Album(id string) InfoFile[StoredAlbum] {
	return InfoFile[StoredAlbum]{Path: filepath.Join(dir.path(), "album-"+id+".json")}
}

func (dir DownloadDir) Playlist(owner string, kind int) InfoFile[StoredPlaylist] {
	return InfoFile[StoredPlaylist]{Path: filepath.Join(dir.path(), "playlist-"+owner+"-"+strconv.Itoa(kind)+".json")}
}

type Track struct {
	Audio    Audio
	InfoFile InfoFile[StoredTrack]
	Cover    Cover
}

// Complete reports whether the audio and info files of the track exist.
func (t Track) Complete() bool {
	return fileExists(t.Audio.Path) && fileExists(t.InfoFile.Path)
}

type Audio struct {
	Path string
}

// Write copies r to the audio file. The content is staged in a sibling file
// and renamed into place once complete, so an interrupted download never
// leaves a truncated file at Path. A non-negative size is the declared length
// of r; content of any other length is discarded.
func (a Audio) Write(r io.Reader, size int64) (n int64, err error) {
	partPath := a.Path + ".part"
	flawP := flaw.P{"path": a.Path}

	f, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o0644)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return 0, flaw.From(fmt.Errorf("failed to open audio file for write: %v", err)).Append(flawP)
	}
	defer func() {
		if nil != err {
			if removeErr := os.Remove(partPath); nil != removeErr && !errors.Is(removeErr, os.ErrNotExist) {
				flawP["err_debug_tree"] = errutil.Tree(removeErr).FlawP()
				removeErr = flaw.From(fmt.Errorf("failed to remove partial audio file: %v", removeErr)).Append(flawP)
				if errutil.IsFlaw(err) {
					err = must.BeFlaw(err).Join(removeErr)
				}
			}
		}
	}()

	n, err = io.Copy(f, r)
	if nil != err {
		_ = f.Close()
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		flawP["written_bytes"] = n
		return n, flaw.From(fmt.Errorf("failed to write audio content: %v", err)).Append(flawP)
	}
	if size >= 0 && n != size {
		_ = f.Close()
		flawP["expected_size"] = size
		flawP["written_size"] = n
		return n, flaw.From(errors.New("audio stream ended before the declared length")).Append(flawP)
	}

	if err := f.Sync(); nil != err {
		_ = f.Close()
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return n, flaw.From(fmt.Errorf("failed to sync audio file: %v", err)).Append(flawP)
	}

	if err := f.Close(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return n, flaw.From(fmt.Errorf("failed to close audio file: %v", err)).Append(flawP)
	}

	if err := os.Rename(partPath, a.Path); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return n, flaw.From(fmt.Errorf("failed to move audio file into place: %v", err)).Append(flawP)
	}

	return n, nil
}

type Cover struct {
	Path string
}

func (c Cover) Write(b []byte) error {
	if err := os.WriteFile(c.Path, b, 0o0644); nil != err {
		flawP := flaw.P{"path": c.Path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to write cover file: %v", err)).Append(flawP)
	}
	return nil
}

func (c Cover) Read() ([]byte, error) {
	b, err := os.ReadFile(c.Path)
	if nil != err {
		flawP := flaw.P{"path": c.Path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to read cover file: %v", err)).Append(flawP)
	}
	return b, nil
}

type InfoFile[T any] struct {
	Path string
}

func (p InfoFile[T]) Read() (*T, error) {
	return readInfoFile(p)
}

func (p InfoFile[T]) Write(v T) error {
	return writeInfoFile(p, v)
}

func readInfoFile[T any](file InfoFile[T]) (out *T, err error) {
	filePath := file.Path
	flawP := flaw.P{"file_path": filePath}

	f, err := os.OpenFile(filePath, os.O_RDONLY, 0o0644)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to open info file for read: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close info file: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				out, err = nil, closeErr
			}
		}
	}()

	var v T
	if err := json.NewDecoder(f).Decode(&v); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode info file contents: %v", err)).Append(flawP)
	}

	return &v, nil
}

func writeInfoFile[T any](file InfoFile[T], obj T) (err error) {
	filePath := file.Path
	flawP := flaw.P{"path": filePath}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o0644)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to open info file for write: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close info file: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obj); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to write info content: %v", err)).Append(flawP)
	}

	if err := f.Sync(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to sync info file: %v", err)).Append(flawP)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return nil == err && info.Mode().IsRegular()
}
