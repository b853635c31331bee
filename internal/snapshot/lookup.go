package snapshot

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zfstm/zfstm/internal/config"
	"github.com/zfstm/zfstm/internal/i18n"
	"github.com/zfstm/zfstm/internal/pathdata"
)

// isNoAltReplicatedMount reports whether err is a KindNoAltReplicatedMount
// Error. Spec §7's propagation list deliberately omits this kind: a path
// simply lacking a replicated mirror is the common case when OptAltReplicated
// is set, not a request-ending fault, so callers treat it as best-effort
// rather than aborting the whole lookup.
func isNoAltReplicatedMount(err error) bool {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind == KindNoAltReplicatedMount
	}
	return false
}

// datasetKinds returns the kinds lookup fans each path across, per spec §4.7
// step 1. Order only affects preview ordering downstream, never correctness.
func datasetKinds(cfg config.Config) []DatasetKind {
	if cfg.OptAltReplicated {
		return []DatasetKind{KindAltReplicated, KindMostImmediate}
	}
	return []DatasetKind{KindMostImmediate}
}

// job pairs a path with the dataset kind it's being probed under, the unit of
// parallel work for Lookup's fan-out.
type job struct {
	path string
	kind DatasetKind
}

// Lookup is the top-level façade (C7): for every input path and every
// selected dataset kind, it builds search plans (C4) and collects historical
// versions (C5), concatenating everything into historical. live echoes the
// input paths unless the caller suppressed it. It fails NothingEverExisted
// when nothing historical turned up and every live entry is phantom -- on an
// empty live slice (suppressed mode) that condition is vacuously true, so the
// failure still fires whenever historical is also empty.
func Lookup(ctx context.Context, cfg config.Config, paths []string) (historical []pathdata.PathRecord, live []pathdata.PathRecord, err error) {
	kinds := datasetKinds(cfg)

	jobs := make([]job, 0, len(paths)*len(kinds))
	for _, p := range paths {
		for _, k := range kinds {
			jobs = append(jobs, job{path: p, kind: k})
		}
	}

	results := make(chan []pathdata.PathRecord, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, j := range jobs {
		j := j
		g.Go(func() error {
			plans, err := Plan(cfg, j.path, j.kind)
			if err != nil {
				if isNoAltReplicatedMount(err) {
					return nil
				}
				return err
			}
			var collected []pathdata.PathRecord
			for _, plan := range plans {
				recs, err := Versions(gctx, plan)
				if err != nil {
					return err
				}
				collected = append(collected, recs...)
			}
			results <- collected
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	close(results)

	for recs := range results {
		historical = append(historical, recs...)
	}

	if !cfg.OptNoLiveVers {
		live = make([]pathdata.PathRecord, 0, len(paths))
		for _, p := range paths {
			live = append(live, pathdata.New(p))
		}
	}

	if len(historical) == 0 && allPhantom(live) {
		return nil, nil, NewError(KindNothingEverExisted,
			i18n.G("path has no live copy and no historical versions"), nil)
	}

	return historical, live, nil
}

// allPhantom reports whether every record in recs is phantom, vacuously true
// on an empty slice -- matching the original's all() semantics so that
// suppressing live versions doesn't itself mask NothingEverExisted.
func allPhantom(recs []pathdata.PathRecord) bool {
	for _, r := range recs {
		if !r.Phantom {
			return false
		}
	}
	return true
}

// LookupDeleted is C7's deleted-mode counterpart: builds search plans for
// requestedDir under every selected dataset kind, runs the deleted-entry
// anti-join (C6) per plan, and merges the results into one globally unique
// set via UniqueDeleted.
func LookupDeleted(ctx context.Context, cfg config.Config, requestedDir string) ([]pathdata.DirEntryLite, error) {
	kinds := datasetKinds(cfg)

	var plans []SearchPlan
	for _, k := range kinds {
		ps, err := Plan(cfg, requestedDir, k)
		if err != nil {
			if isNoAltReplicatedMount(err) {
				continue
			}
			return nil, err
		}
		plans = append(plans, ps...)
	}

	results := make(chan []pathdata.DirEntryLite, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, plan := range plans {
		plan := plan
		g.Go(func() error {
			entries, err := Deleted(gctx, requestedDir, plan)
			if err != nil {
				return err
			}
			results <- entries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	var perPlan [][]pathdata.DirEntryLite
	for entries := range results {
		perPlan = append(perPlan, entries)
	}

	return UniqueDeleted(perPlan), nil
}
