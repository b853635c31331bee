package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/zfstm/zfstm/internal/i18n"
	"github.com/zfstm/zfstm/internal/log"
	"github.com/zfstm/zfstm/internal/pathdata"
)

// versionKey is the (mtime, size) dedup identity spec §4.5 mandates.
type versionKey struct {
	mtime int64
	size  int64
}

// Versions enumerates plan.SnapshotRoot's entries, materializes the candidate
// historical path under each one, drops phantoms, deduplicates by (mtime,
// size), and returns the survivors sorted by ascending mtime (C5).
//
// Reading plan.SnapshotRoot itself is a hard failure (the dataset may be
// unmounted); a given snapshot simply not containing the path is not an
// error at all — pathdata.New reports that as a phantom record, dropped
// below, exactly like any other missing historical version.
func Versions(ctx context.Context, plan SearchPlan) ([]pathdata.PathRecord, error) {
	entries, err := os.ReadDir(plan.SnapshotRoot)
	if err != nil {
		return nil, NewError(KindIOError, i18n.G("could not read snapshot root"), err)
	}

	records := make(chan pathdata.PathRecord, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, e := range entries {
		name := e.Name()
		g.Go(func() error {
			candidate := filepath.Join(plan.SnapshotRoot, name, plan.RelativeSubpath)
			rec := pathdata.New(candidate)
			if rec.Phantom {
				log.Debugf(gctx, "snapshot %s has no version of %s, skipping", name, plan.RelativeSubpath)
				return nil
			}
			records <- rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(records)

	byKey := make(map[versionKey]pathdata.PathRecord, len(records))
	for rec := range records {
		byKey[versionKey{mtime: rec.ModTime.UnixNano(), size: rec.Size}] = rec
	}

	out := make([]pathdata.PathRecord, 0, len(byKey))
	for _, rec := range byKey {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.Before(out[j].ModTime) })
	return out, nil
}
