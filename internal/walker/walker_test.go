package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkMaxFileSizeBoundary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "at_limit.asset"), 100)
	writeFile(t, filepath.Join(dir, "over_limit.asset"), 101)

	res, err := Walk(context.Background(), Options{
		Roots:            []string{dir},
		FileExtensions:   []string{".asset"},
		MaxFileSizeBytes: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected 1 entry at the boundary, got %d", len(res.Entries))
	}
	if len(res.SkippedLarge) != 1 {
		t.Fatalf("expected 1 skipped-large entry, got %d", len(res.SkippedLarge))
	}
}

func TestWalkFollowedSymlinkReportsTargetSize(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.asset")
	writeFile(t, target, 42)

	link := filepath.Join(dir, "linked.asset")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := Walk(context.Background(), Options{
		Roots:          []string{dir},
		FileExtensions: []string{".asset"},
		FollowSymlinks: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected the real file and its symlink both surfaced, got %d: %+v", len(res.Entries), res.Entries)
	}
	for _, e := range res.Entries {
		if e.Size != 42 {
			t.Fatalf("expected entry %s to report the target's size (42), got %d", e.Path, e.Size)
		}
	}
}

func TestWalkExcludesHiddenAndGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Assets", "a.meta"), 10)
	writeFile(t, filepath.Join(dir, ".git", "b.meta"), 10)
	writeFile(t, filepath.Join(dir, "Library", "c.meta"), 10)

	res, err := Walk(context.Background(), Options{
		Roots:             []string{dir},
		FileExtensions:    []string{".meta"},
		IgnoreHiddenFiles: true,
		ExcludeGlobs:      []string{"**/Library/**"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("expected exactly 1 surviving entry, got %d: %+v", len(res.Entries), res.Entries)
	}
}
