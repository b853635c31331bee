// Package pathdata holds the small, immutable value types that every other
// package in zfstm passes around: a snapshot-or-live filesystem path plus
// whatever metadata was captured for it at construction time.
package pathdata

import (
	"context"
	"os"
	"time"

	"github.com/zfstm/zfstm/internal/i18n"
	"github.com/zfstm/zfstm/internal/log"
)

// PathRecord is a live or historical filesystem path, with the metadata that was
// readable for it at the moment it was constructed. Once built, a PathRecord is
// never refreshed: Size and ModTime are the deduplication identity used by the
// version collector and must stay exactly as first observed.
type PathRecord struct {
	Path string

	// Size and ModTime are only meaningful when Phantom is false.
	Size    int64
	ModTime time.Time

	// Phantom is true when the path's metadata could not be read: either it
	// doesn't currently exist, or reading it failed for some other reason (e.g.
	// permission denied on an ancestor directory). Phantom does not distinguish
	// between the two: New logs the latter case as a warning instead of letting
	// it pass for a plain not-exist, so the fault is visible rather than masked.
	Phantom bool
}

// New captures a PathRecord for path. It uses Lstat, not Stat, so a symlink's
// own metadata is captured and never silently resolved through -- a dangling
// symlink is not phantom, since Lstat never attempts to reach its target; only
// the symlink entry itself missing makes it so.
//
// A path that simply doesn't exist is phantom without comment. Any other stat
// failure (permission denied, I/O error) is also reported as phantom -- PathRecord
// has no field to carry the distinct cause -- but is first logged as a warning,
// since silently folding it into the not-exist case would mask a real fault.
func New(path string) PathRecord {
	info, err := os.Lstat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warningf(context.Background(), i18n.Gf("could not read metadata for %s, treating as phantom: %v"), path, err)
		}
		return PathRecord{Path: path, Phantom: true}
	}
	return PathRecord{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// FileKind is a coarse classification of a directory entry's type.
type FileKind int

const (
	// KindUnknown means the kind could not be read.
	KindUnknown FileKind = iota
	KindRegular
	KindDirectory
	KindSymlink
	KindOther
)

// DirEntryLite is a bare directory entry: an absolute path plus an optional file
// kind, used wherever full PathRecord metadata is unnecessary (mainly the deleted
// enumerator, which only ever needs names and a kind for display).
type DirEntryLite struct {
	Path string
	Kind FileKind // KindUnknown if the kind could not be read
}

// NewDirEntryLite builds a DirEntryLite for path, reading its kind via Lstat.
// A failed Lstat leaves Kind as KindUnknown rather than failing the whole entry:
// the path itself is still useful to the caller even if its type isn't.
func NewDirEntryLite(path string) DirEntryLite {
	info, err := os.Lstat(path)
	if err != nil {
		return DirEntryLite{Path: path}
	}
	return DirEntryLite{Path: path, Kind: kindFromMode(info.Mode())}
}

func kindFromMode(mode os.FileMode) FileKind {
	switch {
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindRegular
	default:
		return KindOther
	}
}
