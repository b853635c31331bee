// Package mount implements the Mount Inventory, Dataset Locator and Replica
// Resolver components (spec §4.1-§4.3): an immutable catalog of
// (filesystem name, mount point) pairs, longest-prefix dataset lookup, and
// suffix-matched alternate-replicated mirror discovery.
package mount

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/zfstm/zfstm/internal/i18n"
)

// Entry is one (filesystem name, mount point) pair. Both are opaque strings;
// equality is byte-exact.
type Entry struct {
	Filesystem string
	MountPoint string
}

// Inventory is an ordered, read-only catalog of mount entries (C1). Duplicate
// mount points are tolerated; order is preserved for iteration.
type Inventory []Entry

// reverseIndex builds mount point -> filesystem name, first occurrence winning
// when a mount point is duplicated.
func (inv Inventory) reverseIndex() map[string]string {
	idx := make(map[string]string, len(inv))
	for _, e := range inv {
		if _, exists := idx[e.MountPoint]; exists {
			continue
		}
		idx[e.MountPoint] = e.Filesystem
	}
	return idx
}

// ImmediateDataset returns the mount point of the longest-prefix mount that
// contains path's parent directory (C2). Ties on length are broken by the last
// qualifying mount encountered in Inventory order; spec.md leaves this
// unspecified, so callers should not depend on a particular winner among
// equal-length mounts.
func (inv Inventory) ImmediateDataset(path string) (string, error) {
	parent := filepath.Dir(filepath.Clean(path))

	var best string
	for _, e := range inv {
		if !isPathPrefix(e.MountPoint, parent) {
			continue
		}
		if len(e.MountPoint) >= len(best) {
			best = e.MountPoint
		}
	}

	if best == "" {
		return "", NewError(KindNoQualifyingDataset,
			i18n.G("could not identify any qualifying dataset; maybe consider specifying manually at SNAP_POINT"), nil)
	}
	return best, nil
}

// AltPair pairs an alternate-replicated mount with the immediate mount it was
// resolved from, because the planner still needs the immediate mount to compute
// relative subpaths (spec §4.3).
type AltPair struct {
	Alt       string
	Immediate string
}

// AltReplicated enumerates every mount whose filesystem name has immediate's
// filesystem name as a suffix, but is not equal to it (C3). Results are sorted
// by ascending mount-point length, which governs preview order downstream.
func (inv Inventory) AltReplicated(immediate string) ([]AltPair, error) {
	idx := inv.reverseIndex()

	fs0, ok := idx[immediate]
	if !ok {
		return nil, NewError(KindNoImmediateDataset,
			i18n.G("unable to detect an alternate replicated mount point; perhaps the replicated filesystem is not mounted"), nil)
	}

	var alts []string
	for mountPoint, fsName := range idx {
		if fsName == fs0 {
			continue
		}
		if !strings.HasSuffix(fsName, fs0) {
			continue
		}
		alts = append(alts, mountPoint)
	}

	if len(alts) == 0 {
		return nil, NewError(KindNoAltReplicatedMount,
			i18n.G("unable to detect an alternate replicated mount point; perhaps the replicated filesystem is not mounted"), nil)
	}

	sort.Slice(alts, func(i, j int) bool { return len(alts[i]) < len(alts[j]) })

	pairs := make([]AltPair, 0, len(alts))
	for _, alt := range alts {
		pairs = append(pairs, AltPair{Alt: alt, Immediate: immediate})
	}
	return pairs, nil
}

// isPathPrefix reports whether mountPoint is a component-wise path prefix of
// target: "/usr" is a prefix of "/usr/bin" but not of "/usrbin".
func isPathPrefix(mountPoint, target string) bool {
	mountPoint = filepath.Clean(mountPoint)
	target = filepath.Clean(target)

	if mountPoint == string(filepath.Separator) {
		return true
	}
	if mountPoint == target {
		return true
	}
	return strings.HasPrefix(target, mountPoint+string(filepath.Separator))
}
