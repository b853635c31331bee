// Package testutils provides the test tooling internal/mount and
// internal/snapshot tests share: temp directories, golden-file assertions and a
// fake snapshot-pool fixture builder, in the spirit of the teacher's
// internal/zfs/zfs_test.go tooling (tempDir, timeAsserter, loadFromGoldenFile,
// newFakePools) adapted to this module's directory-tree-based domain instead of
// a real ZFS pool.
package testutils

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var update = flag.Bool("update", false, "update golden files")

// InstallUpdateFlag exposes the -update flag to callers that need to check it
// directly instead of going through LoadFromGoldenFile.
func InstallUpdateFlag() *bool {
	return update
}

// TempDir creates a temporary directory for a test and returns a cleanup func.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "zfstm-test-")
	if err != nil {
		t.Fatal("can't create temporary directory", err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Error("can't clean temporary directory", err)
		}
	}
}

// LoadFromGoldenFile loads the golden file matching the running test's name
// into want, refreshing it from got first when -update was passed.
func LoadFromGoldenFile(t *testing.T, got interface{}, want interface{}) {
	t.Helper()

	goldenFile := filepath.Join("testdata", testNameToPath(t)+".golden")
	if *update {
		b, err := json.MarshalIndent(got, "", "  ")
		if err != nil {
			t.Fatal("couldn't convert to json:", err)
		}
		if err := os.MkdirAll(filepath.Dir(goldenFile), 0o755); err != nil {
			t.Fatal("couldn't create testdata directory:", err)
		}
		if err := os.WriteFile(goldenFile, b, 0o644); err != nil {
			t.Fatal("couldn't save golden file:", err)
		}
	}

	b, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatal("couldn't read golden file:", err)
	}
	if err := json.Unmarshal(b, want); err != nil {
		t.Fatal("couldn't convert golden file content to structure:", err)
	}
}

func testNameToPath(t *testing.T) string {
	t.Helper()

	parts := strings.Split(t.Name(), "/")
	var elems []string
	for _, e := range parts {
		for _, k := range []string{"/", " ", ",", "=", "'"} {
			e = strings.ReplaceAll(e, k, "_")
		}
		elems = append(elems, strings.ToLower(e))
	}
	return strings.Join(elems, "/")
}

// TimeAsserter ensures recorded times fall within [start, now], the same
// bracketing device zfs_test.go uses for dataset LastUsed timestamps, applied
// here to PathRecord.ModTime.
type TimeAsserter time.Time

// AssertInRange fails the test if got falls outside [ta, now].
func (ta TimeAsserter) AssertInRange(t *testing.T, got time.Time) {
	t.Helper()

	start := time.Time(ta)
	now := time.Now()
	if got.Before(start) || got.After(now) {
		t.Errorf("expected time in range [%s, %s], got %s", start, now, got)
	}
}
