package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherFiresAfterDebounce(t *testing.T) {
	root := t.TempDir()

	fired := make(chan struct{}, 1)
	w, err := New([]string{root}, 30*time.Millisecond, func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was never fired")
	}

	stats := w.Stats()
	require.GreaterOrEqual(t, stats.EventsSeen, 1)
	require.GreaterOrEqual(t, stats.RescansFired, 1)
}
