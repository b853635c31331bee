// Package snapshot implements the Search-Dir Planner, Version Collector,
// Deleted Enumerator and Lookup Orchestrator components (spec §4.4-§4.7): turning
// a live path and a dataset kind into snapshot probes, then resolving those
// probes into historical versions or deleted filenames.
package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/zfstm/zfstm/internal/config"
	"github.com/zfstm/zfstm/internal/i18n"
	"github.com/zfstm/zfstm/internal/mount"
)

// DatasetKind selects which mounts a search plan is built against (spec §3).
type DatasetKind int

const (
	// KindMostImmediate searches only the longest-prefix live mount.
	KindMostImmediate DatasetKind = iota
	// KindAltReplicated searches every alternate-replicated mirror instead.
	KindAltReplicated
)

// snapshotDirName is the literal path segment every snapshot-capable dataset
// exposes its point-in-time subdirectories under.
const snapshotDirName = ".zfs/snapshot"

// SearchPlan is a (snapshot root, relative subpath) probe: enumerate the
// snapshot root's entries, then look for relativeSubpath under each one.
type SearchPlan struct {
	SnapshotRoot    string
	RelativeSubpath string
}

// datasetPair is the (dataset_of_interest, reference_mount) resolution step
// from spec §4.4's table, kept unexported since callers only ever need the
// resulting SearchPlan. stripAgainst is what the relative subpath is actually
// computed against: equal to referenceMount under Native topologies, but
// local_dir under UserDefined even though the pair's nominal reference_mount
// is snap_dir (spec §4.4 calls this out explicitly).
type datasetPair struct {
	dataset        string
	referenceMount string
	stripAgainst   string
}

// Plan resolves path and kind into the probes the caller must run against
// cfg.SnapPoint (C4). Under a UserDefinedTopology, kind is ignored: there is
// only ever one pair to search.
func Plan(cfg config.Config, path string, kind DatasetKind) ([]SearchPlan, error) {
	pairs, err := datasetPairs(cfg, path, kind)
	if err != nil {
		return nil, err
	}

	plans := make([]SearchPlan, 0, len(pairs))
	for _, p := range pairs {
		rel, ok := stripPrefix(path, p.stripAgainst)
		if !ok {
			return nil, NewError(KindWrongWorkingDirectory,
				i18n.G("could not compute path relative to the mount topology; check SNAP_DIR/LOCAL_DIR"), nil)
		}
		plans = append(plans, SearchPlan{
			SnapshotRoot:    filepath.Join(p.dataset, snapshotDirName),
			RelativeSubpath: rel,
		})
	}
	return plans, nil
}

func datasetPairs(cfg config.Config, path string, kind DatasetKind) ([]datasetPair, error) {
	switch topo := cfg.SnapPoint.(type) {
	case mount.UserDefinedTopology:
		return []datasetPair{{
			dataset:        topo.SnapDir,
			referenceMount: topo.SnapDir,
			stripAgainst:   topo.LocalDir,
		}}, nil

	case mount.NativeTopology:
		immediate, err := topo.Mounts.ImmediateDataset(path)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindMostImmediate:
			return []datasetPair{{dataset: immediate, referenceMount: immediate, stripAgainst: immediate}}, nil
		case KindAltReplicated:
			alts, err := topo.Mounts.AltReplicated(immediate)
			if err != nil {
				return nil, err
			}
			pairs := make([]datasetPair, 0, len(alts))
			for _, a := range alts {
				pairs = append(pairs, datasetPair{dataset: a.Alt, referenceMount: a.Immediate, stripAgainst: a.Immediate})
			}
			return pairs, nil
		default:
			return nil, NewError(KindWrongWorkingDirectory, i18n.G("unrecognized dataset kind"), nil)
		}

	default:
		return nil, NewError(KindWrongWorkingDirectory, i18n.G("unrecognized mount topology"), nil)
	}
}

// stripPrefix removes prefix from path, component-wise (spec §4.2/§4.4 share
// the same prefix arithmetic). Returns ok=false if prefix does not bound path.
func stripPrefix(path, prefix string) (string, bool) {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(filepath.Separator) {
		return strings.TrimPrefix(path, string(filepath.Separator)), true
	}
	if path == prefix {
		return "", true
	}
	if !strings.HasPrefix(path, prefix+string(filepath.Separator)) {
		return "", false
	}
	return strings.TrimPrefix(path, prefix+string(filepath.Separator)), true
}
