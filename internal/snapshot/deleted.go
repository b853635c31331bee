package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zfstm/zfstm/internal/i18n"
	"github.com/zfstm/zfstm/internal/log"
	"github.com/zfstm/zfstm/internal/pathdata"
)

// Deleted computes the entries present in some snapshot of requestedDir but
// absent from its live listing (C6). Each snapshot subdirectory's listing is
// collected independently and merged by filename, last write wins, before the
// live set is subtracted -- this stage keeps an arbitrary representative per
// filename since only the name matters here; UniqueDeleted is what later picks
// a representative by mtime across plans.
func Deleted(ctx context.Context, requestedDir string, plan SearchPlan) ([]pathdata.DirEntryLite, error) {
	liveEntries, err := os.ReadDir(requestedDir)
	if err != nil {
		return nil, NewError(KindIOError, i18n.G("could not read requested directory"), err)
	}
	live := make(map[string]struct{}, len(liveEntries))
	for _, e := range liveEntries {
		live[e.Name()] = struct{}{}
	}

	snapEntries, err := os.ReadDir(plan.SnapshotRoot)
	if err != nil {
		return nil, NewError(KindIOError, i18n.G("could not read snapshot root"), err)
	}

	type listing struct {
		entries []pathdata.DirEntryLite
	}
	listings := make(chan listing, len(snapEntries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, e := range snapEntries {
		name := e.Name()
		g.Go(func() error {
			dir := filepath.Join(plan.SnapshotRoot, name, plan.RelativeSubpath)
			dirEntries, err := os.ReadDir(dir)
			if err != nil {
				log.Debugf(gctx, "snapshot %s has no directory at %s, skipping", name, plan.RelativeSubpath)
				listings <- listing{}
				return nil
			}
			lites := make([]pathdata.DirEntryLite, 0, len(dirEntries))
			for _, de := range dirEntries {
				lites = append(lites, pathdata.NewDirEntryLite(filepath.Join(dir, de.Name())))
			}
			listings <- listing{entries: lites}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(listings)

	union := make(map[string]pathdata.DirEntryLite)
	for l := range listings {
		for _, lite := range l.entries {
			union[filepath.Base(lite.Path)] = lite
		}
	}

	out := make([]pathdata.DirEntryLite, 0, len(union))
	for name, lite := range union {
		if _, ok := live[name]; ok {
			continue
		}
		out = append(out, lite)
	}
	return out, nil
}

// UniqueDeleted merges several plans' Deleted outputs into one globally
// unique-by-filename set, retaining the representative with the greatest
// modification time across all of them (the cross-plan merge spec §4.6
// describes for replicated mirrors). Entries that no longer stat cleanly are
// dropped rather than guessed at.
func UniqueDeleted(perPlan [][]pathdata.DirEntryLite) []pathdata.DirEntryLite {
	best := make(map[string]pathdata.PathRecord)
	for _, entries := range perPlan {
		for _, e := range entries {
			name := filepath.Base(e.Path)
			if name == "" || name == "." || name == string(filepath.Separator) {
				continue
			}
			rec := pathdata.New(e.Path)
			if rec.Phantom {
				continue
			}
			cur, ok := best[name]
			if !ok || rec.ModTime.After(cur.ModTime) {
				best[name] = rec
			}
		}
	}

	out := make([]pathdata.DirEntryLite, 0, len(best))
	for _, rec := range best {
		out = append(out, pathdata.NewDirEntryLite(rec.Path))
	}
	return out
}
