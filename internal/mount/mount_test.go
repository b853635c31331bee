package mount_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zfstm/zfstm/internal/mount"
	"github.com/zfstm/zfstm/internal/testutils"
)

func TestImmediateDataset(t *testing.T) {
	inv := mount.Inventory{
		{Filesystem: "rpool", MountPoint: "/"},
		{Filesystem: "rpool/usr", MountPoint: "/usr"},
		{Filesystem: "rpool/usrbackup", MountPoint: "/usrbackup"},
	}

	tests := map[string]struct {
		path string
		want string
	}{
		"path under deepest prefix":       {path: "/usr/bin/ls", want: "/usr"},
		"path exactly at mount point":     {path: "/usr", want: "/"},
		"path not under any named prefix": {path: "/usrbin/ls", want: "/"},
		"path rooted outside any prefix":  {path: "/", want: "/"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := inv.ImmediateDataset(tc.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ImmediateDataset() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImmediateDatasetNoQualifyingMount(t *testing.T) {
	var inv mount.Inventory
	if _, err := inv.ImmediateDataset("/anything"); err == nil {
		t.Fatal("expected an error for an empty inventory, got none")
	}
}

func TestAltReplicated(t *testing.T) {
	inv := mount.Inventory{
		{Filesystem: "rpool", MountPoint: "/"},
		{Filesystem: "tank/rpool", MountPoint: "/mnt/backup"},
		{Filesystem: "anypool/rpool", MountPoint: "/mnt/other"},
	}

	pairs, err := inv.AltReplicated("/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pairs) != 2 {
		t.Fatalf("expected 2 alternate replicated mounts, got %d: %+v", len(pairs), pairs)
	}

	for _, p := range pairs {
		if p.Immediate != "/" {
			t.Errorf("expected immediate mount %q, got %q", "/", p.Immediate)
		}
	}

	// Shortest mount point must sort first.
	if pairs[0].Alt != "/mnt/other" {
		t.Errorf("expected /mnt/other to sort first, got %q", pairs[0].Alt)
	}
}

func TestAltReplicatedNoImmediateDataset(t *testing.T) {
	inv := mount.Inventory{{Filesystem: "rpool", MountPoint: "/"}}
	if _, err := inv.AltReplicated("/nowhere"); err == nil {
		t.Fatal("expected an error when the immediate mount isn't in the inventory")
	}
}

func TestAltReplicatedNoMirrorFound(t *testing.T) {
	inv := mount.Inventory{{Filesystem: "rpool", MountPoint: "/"}}
	if _, err := inv.AltReplicated("/"); err == nil {
		t.Fatal("expected an error when no mount's filesystem name has rpool as a suffix")
	}
}

func TestAltReplicatedGolden(t *testing.T) {
	if *testutils.InstallUpdateFlag() {
		t.Log("refreshing golden file for this test")
	}

	inv := mount.Inventory{
		{Filesystem: "rpool", MountPoint: "/"},
		{Filesystem: "tank/rpool", MountPoint: "/mnt/backup"},
		{Filesystem: "anypool/rpool", MountPoint: "/mnt/other"},
	}

	got, err := inv.AltReplicated("/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want []mount.AltPair
	testutils.LoadFromGoldenFile(t, got, &want)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AltReplicated() mismatch against golden file (-want +got):\n%s", diff)
	}
}
