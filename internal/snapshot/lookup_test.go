package snapshot_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/zfstm/zfstm/internal/config"
	"github.com/zfstm/zfstm/internal/mount"
	"github.com/zfstm/zfstm/internal/snapshot"
	"github.com/zfstm/zfstm/internal/testutils"
)

// TestLookupS1 covers spec scenario S1: two snapshots of a live file, both
// surfaced as distinct historical records ordered by ascending mtime, plus the
// live copy itself.
func TestLookupS1(t *testing.T) {
	dir, cleanup := testutils.TempDir(t)
	defer cleanup()

	def := testutils.FakePoolDef{
		Mounts: []testutils.FakeMount{{
			Filesystem: "tank",
			MountPoint: "/",
			Live:       map[string]string{"home/a.txt": "current"},
			Snapshots: map[string]map[string]string{
				"s1": {"home/a.txt": "v1"},
				"s2": {"home/a.txt": "v2"},
			},
		}},
	}
	inv := def.Build(t, dir)
	root := inv[0].MountPoint

	mustChtimes(t, filepath.Join(root, ".zfs", "snapshot", "s1", "home", "a.txt"), time.Now().Add(-2*time.Hour))
	mustChtimes(t, filepath.Join(root, ".zfs", "snapshot", "s2", "home", "a.txt"), time.Now().Add(-time.Hour))

	cfg := config.Config{SnapPoint: mount.NativeTopology{Mounts: inv}}

	path := filepath.Join(root, "home", "a.txt")
	historical, live, err := snapshot.Lookup(context.Background(), cfg, []string{path})
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}

	if len(historical) != 2 {
		t.Fatalf("expected 2 historical records, got %d: %+v", len(historical), historical)
	}
	if !historical[0].ModTime.Before(historical[1].ModTime) {
		t.Errorf("expected ascending mtime order, got %v then %v", historical[0].ModTime, historical[1].ModTime)
	}
	if len(live) != 1 || live[0].Path != path {
		t.Fatalf("expected live = [%s], got %+v", path, live)
	}
}

// TestLookupS5 covers spec scenario S5: a path with no live copy and no
// snapshots containing it fails NothingEverExisted.
func TestLookupS5(t *testing.T) {
	dir, cleanup := testutils.TempDir(t)
	defer cleanup()

	def := testutils.FakePoolDef{
		Mounts: []testutils.FakeMount{{
			Filesystem: "tank",
			MountPoint: "/",
			Snapshots: map[string]map[string]string{
				"s1": {"home/other.txt": "unrelated"},
			},
		}},
	}
	inv := def.Build(t, dir)
	root := inv[0].MountPoint

	cfg := config.Config{SnapPoint: mount.NativeTopology{Mounts: inv}}

	_, _, err := snapshot.Lookup(context.Background(), cfg, []string{filepath.Join(root, "nonexistent", "x")})
	if err == nil {
		t.Fatal("expected NothingEverExisted, got no error")
	}
}

// TestLookupS4 covers spec scenario S4: an alt-replicated mirror surfaces its
// own historical version of a path alongside the immediate mount's.
func TestLookupS4(t *testing.T) {
	dir, cleanup := testutils.TempDir(t)
	defer cleanup()

	def := testutils.FakePoolDef{
		Mounts: []testutils.FakeMount{
			{
				Filesystem: "rpool",
				MountPoint: "/",
				Snapshots: map[string]map[string]string{
					"s1": {"etc/hostname": "immediate-version"},
				},
			},
			{
				Filesystem: "tank/rpool",
				MountPoint: "/mnt/backup",
				Snapshots: map[string]map[string]string{
					"s1": {"etc/hostname": "mirror-version"},
				},
			},
		},
	}
	inv := def.Build(t, dir)
	immediateRoot := inv[0].MountPoint
	mirrorRoot := inv[1].MountPoint

	mustChtimes(t, filepath.Join(immediateRoot, ".zfs", "snapshot", "s1", "etc", "hostname"), time.Now().Add(-2*time.Hour))
	mustChtimes(t, filepath.Join(mirrorRoot, ".zfs", "snapshot", "s1", "etc", "hostname"), time.Now().Add(-time.Hour))

	cfg := config.Config{OptAltReplicated: true, OptNoLiveVers: true, SnapPoint: mount.NativeTopology{Mounts: inv}}

	path := filepath.Join(immediateRoot, "etc", "hostname")
	historical, _, err := snapshot.Lookup(context.Background(), cfg, []string{path})
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}

	if len(historical) != 2 {
		t.Fatalf("expected both the immediate and mirror versions, got %d: %+v", len(historical), historical)
	}
}

// TestLookupAltReplicatedWithoutMirrorIsAdditiveOnly covers the common case
// where OptAltReplicated is set but the path's mount has no replicated mirror
// at all: the alt-replicated dataset kind contributes nothing instead of
// failing the whole lookup, and the immediate mount's historical versions
// still come back.
func TestLookupAltReplicatedWithoutMirrorIsAdditiveOnly(t *testing.T) {
	dir, cleanup := testutils.TempDir(t)
	defer cleanup()

	def := testutils.FakePoolDef{
		Mounts: []testutils.FakeMount{{
			Filesystem: "rpool",
			MountPoint: "/",
			Snapshots: map[string]map[string]string{
				"s1": {"etc/hostname": "immediate-version"},
			},
		}},
	}
	inv := def.Build(t, dir)
	root := inv[0].MountPoint

	mustChtimes(t, filepath.Join(root, ".zfs", "snapshot", "s1", "etc", "hostname"), time.Now().Add(-time.Hour))

	cfg := config.Config{OptAltReplicated: true, OptNoLiveVers: true, SnapPoint: mount.NativeTopology{Mounts: inv}}

	path := filepath.Join(root, "etc", "hostname")
	historical, _, err := snapshot.Lookup(context.Background(), cfg, []string{path})
	if err != nil {
		t.Fatalf("Lookup() unexpected error: %v", err)
	}

	if len(historical) != 1 {
		t.Fatalf("expected the immediate mount's single historical version despite no mirror, got %d: %+v", len(historical), historical)
	}
}

// TestLookupDeletedS6 covers spec scenario S6: unique_deleted across two
// plans keeps the single, freshest representative of a colliding filename.
func TestLookupDeletedS6(t *testing.T) {
	dir, cleanup := testutils.TempDir(t)
	defer cleanup()

	def := testutils.FakePoolDef{
		Mounts: []testutils.FakeMount{
			{
				Filesystem: "rpool",
				MountPoint: "/",
				Live:       map[string]string{"home/.keep": ""},
				Snapshots: map[string]map[string]string{
					"s1": {"home/b.txt": "plan-a"},
				},
			},
			{
				Filesystem: "tank/rpool",
				MountPoint: "/mnt/backup",
				Snapshots: map[string]map[string]string{
					"s1": {"home/b.txt": "plan-b"},
				},
			},
		},
	}
	inv := def.Build(t, dir)
	immediateRoot := inv[0].MountPoint
	mirrorRoot := inv[1].MountPoint

	mustChtimes(t, filepath.Join(immediateRoot, ".zfs", "snapshot", "s1", "home", "b.txt"), time.Now().Add(-2*time.Hour))
	mustChtimes(t, filepath.Join(mirrorRoot, ".zfs", "snapshot", "s1", "home", "b.txt"), time.Now().Add(-time.Hour))

	cfg := config.Config{OptAltReplicated: true, SnapPoint: mount.NativeTopology{Mounts: inv}}

	entries, err := snapshot.LookupDeleted(context.Background(), cfg, filepath.Join(immediateRoot, "home"))
	if err != nil {
		t.Fatalf("LookupDeleted() unexpected error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected a single globally-unique deleted filename, got %d: %+v", len(entries), entries)
	}
	if filepath.Base(entries[0].Path) != "b.txt" {
		t.Errorf("expected deleted filename b.txt, got %q", entries[0].Path)
	}
	if filepath.Dir(entries[0].Path) != filepath.Join(mirrorRoot, ".zfs", "snapshot", "s1", "home") {
		t.Errorf("expected the freshest (mirror) representative to win, got %q", entries[0].Path)
	}
}

// TestLookupDeletedAltReplicatedWithoutMirrorIsAdditiveOnly mirrors
// TestLookupAltReplicatedWithoutMirrorIsAdditiveOnly for the deleted-mode
// facade: a missing alt-replicated mirror must not hide the immediate mount's
// deleted entries.
func TestLookupDeletedAltReplicatedWithoutMirrorIsAdditiveOnly(t *testing.T) {
	dir, cleanup := testutils.TempDir(t)
	defer cleanup()

	def := testutils.FakePoolDef{
		Mounts: []testutils.FakeMount{{
			Filesystem: "rpool",
			MountPoint: "/",
			Live:       map[string]string{"home/.keep": ""},
			Snapshots: map[string]map[string]string{
				"s1": {"home/b.txt": "gone now"},
			},
		}},
	}
	inv := def.Build(t, dir)
	root := inv[0].MountPoint

	cfg := config.Config{OptAltReplicated: true, SnapPoint: mount.NativeTopology{Mounts: inv}}

	entries, err := snapshot.LookupDeleted(context.Background(), cfg, filepath.Join(root, "home"))
	if err != nil {
		t.Fatalf("LookupDeleted() unexpected error: %v", err)
	}

	if len(entries) != 1 || filepath.Base(entries[0].Path) != "b.txt" {
		t.Fatalf("expected b.txt despite no alt-replicated mirror, got %d: %+v", len(entries), entries)
	}
}
