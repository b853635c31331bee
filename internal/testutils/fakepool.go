package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/zfstm/zfstm/internal/mount"
)

// FakePoolDef is the YAML shape a test fixture is authored in: one or more
// fake mounts, each with a live file tree and zero or more named snapshots,
// materialized as a real directory tree with a .zfs/snapshot/<name>/...
// convention (adapted from the teacher's newFakePools, which instead builds
// real ZFS pools from YAML; this module's core only ever reads plain
// directories, so the fixture builder stops at the filesystem layer).
type FakePoolDef struct {
	Mounts []FakeMount `yaml:"mounts"`
}

// FakeMount is one (filesystem, mountpoint) pair plus the file contents to lay
// down for its live tree and each of its snapshots.
type FakeMount struct {
	Filesystem string `yaml:"filesystem"`
	MountPoint string `yaml:"mountpoint"`

	// Live maps a path relative to MountPoint to file content. Absent entries
	// mean that path does not exist live.
	Live map[string]string `yaml:"live"`

	// Snapshots maps a snapshot name to the same relative-path -> content map.
	Snapshots map[string]map[string]string `yaml:"snapshots"`
}

// LoadFakePoolDef reads and parses a FakePoolDef from a YAML file.
func LoadFakePoolDef(t *testing.T, path string) FakePoolDef {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal("couldn't read fake pool definition:", err)
	}
	var def FakePoolDef
	if err := yaml.Unmarshal(b, &def); err != nil {
		t.Fatal("couldn't parse fake pool definition:", err)
	}
	return def
}

// Build materializes def under dir, returning the mount.Inventory a caller can
// feed straight into mount.NativeTopology. Each FakeMount's MountPoint is
// rooted under dir so tests never touch the real filesystem root.
func (def FakePoolDef) Build(t *testing.T, dir string) mount.Inventory {
	t.Helper()

	inv := make(mount.Inventory, 0, len(def.Mounts))
	for _, m := range def.Mounts {
		root := filepath.Join(dir, m.MountPoint)
		writeTree(t, root, m.Live)

		for snapName, files := range m.Snapshots {
			snapRoot := filepath.Join(root, ".zfs", "snapshot", snapName)
			writeTree(t, snapRoot, files)
		}

		inv = append(inv, mount.Entry{Filesystem: m.Filesystem, MountPoint: root})
	}
	return inv
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal("couldn't create fixture root:", err)
	}
	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal("couldn't create fixture directory:", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal("couldn't write fixture file:", err)
		}
	}
}
