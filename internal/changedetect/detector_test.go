package changedetect

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unityscan/depgraph/internal/walker"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "sig.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestClassifyNewThenUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.meta")
	require.NoError(t, os.WriteFile(path, []byte("guid: abc123"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	entry := walker.Entry{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}

	cache := openTestCache(t)
	det := NewDetector(cache, true)

	results, errs, err := det.Classify(ctx, []walker.Entry{entry})
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, results, 1)
	assert.Equal(t, ClassNew, results[0].Classification)

	results, errs, err = det.Classify(ctx, []walker.Entry{entry})
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, results, 1)
	assert.Equal(t, ClassUnchanged, results[0].Classification)
}

func TestClassifyDeepCheckIgnoresBareMtimeBump(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.meta")
	content := []byte("guid: abc123")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	entry := walker.Entry{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}

	cache := openTestCache(t)
	det := NewDetector(cache, true)

	_, _, err = det.Classify(ctx, []walker.Entry{entry})
	require.NoError(t, err)

	// Bump mtime only; content is byte-identical.
	bumped := entry
	bumped.ModTime = entry.ModTime + int64(time.Second)

	results, errs, err := det.Classify(ctx, []walker.Entry{bumped})
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, results, 1)
	assert.Equal(t, ClassUnchanged, results[0].Classification, "deep_check must classify by content hash, not stat alone")
}

func TestClassifyDetectsDeletion(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.meta")
	require.NoError(t, os.WriteFile(path, []byte("guid: abc123"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	entry := walker.Entry{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}

	cache := openTestCache(t)
	det := NewDetector(cache, false)

	_, _, err = det.Classify(ctx, []walker.Entry{entry})
	require.NoError(t, err)

	results, _, err := det.Classify(ctx, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ClassDeleted, results[0].Classification)
	assert.Equal(t, path, results[0].Path)
}
