// Package walker implements the FileWalker component (spec §4.1): it
// traverses a project's root directories and yields the candidate asset and
// .meta files for the rest of the pipeline.
//
// Grounded on mutagen-io-mutagen's ignore-pattern matching
// (pkg/synchronization/core/ignore/mutagen/ignore.go), which uses
// doublestar glob syntax for exclude patterns; adapted here to a simple
// allow/deny walk rather than a full two-sided ignore VCS.
package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/unityscan/depgraph/internal/scanerr"
)

// Options configures a walk. Zero-value FileExtensions or MaxFileSizeBytes
// disable the respective filter.
type Options struct {
	Roots             []string
	ExcludeGlobs      []string
	FileExtensions    []string // e.g. []string{".meta", ".cs"}; matched case-insensitively
	IgnoreHiddenFiles bool
	FollowSymlinks    bool
	MaxFileSizeBytes  int64
}

// Entry describes one file the walk surfaced.
type Entry struct {
	Path    string
	Size    int64
	ModTime int64 // unix nanos, avoids importing time into callers that only compare
}

// Result is the outcome of a single Walk call.
type Result struct {
	Entries      []Entry
	SkippedLarge []string // paths skipped for exceeding MaxFileSizeBytes
	Errors       []*scanerr.IoError
}

// Walk traverses opts.Roots and returns every file passing the extension,
// hidden-file and exclude-glob filters. A single unreadable entry is
// recorded as a scanerr.IoError in Result.Errors and the walk continues;
// per spec §4.1 a walk never aborts because of one bad entry.
func Walk(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	for _, root := range opts.Roots {
		if err := ctx.Err(); err != nil {
			return res, &scanerr.CancelledError{Stage: "walk"}
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return filepath.SkipAll
			}
			if err != nil {
				res.Errors = append(res.Errors, &scanerr.IoError{Path: path, Cause: err})
				return nil
			}

			if d.IsDir() {
				if opts.IgnoreHiddenFiles && isHidden(d.Name()) && path != root {
					return filepath.SkipDir
				}
				if matchesAny(opts.ExcludeGlobs, path) {
					return filepath.SkipDir
				}
				return nil
			}

			var info os.FileInfo
			if d.Type()&fs.ModeSymlink != 0 {
				if !opts.FollowSymlinks {
					return nil
				}
				targetInfo, statErr := os.Stat(path)
				if statErr != nil {
					res.Errors = append(res.Errors, &scanerr.IoError{Path: path, Cause: statErr})
					return nil
				}
				if targetInfo.IsDir() {
					return nil // do not recurse through symlinked directories here
				}
				info = targetInfo // resolved target's size/modtime, not the symlink's own
			}

			if opts.IgnoreHiddenFiles && isHidden(d.Name()) {
				return nil
			}
			if matchesAny(opts.ExcludeGlobs, path) {
				return nil
			}
			if !matchesExtension(opts.FileExtensions, path) {
				return nil
			}

			if info == nil {
				var infoErr error
				info, infoErr = d.Info()
				if infoErr != nil {
					res.Errors = append(res.Errors, &scanerr.IoError{Path: path, Cause: infoErr})
					return nil
				}
			}

			if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
				res.SkippedLarge = append(res.SkippedLarge, path)
				return nil
			}

			res.Entries = append(res.Entries, Entry{
				Path:    path,
				Size:    info.Size(),
				ModTime: info.ModTime().UnixNano(),
			})
			return nil
		})
		if err != nil {
			res.Errors = append(res.Errors, &scanerr.IoError{Path: root, Cause: err})
		}
	}

	return res, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func matchesAny(globs []string, path string) bool {
	slashed := filepath.ToSlash(path)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, slashed); ok {
			return true
		}
	}
	return false
}

func matchesExtension(exts []string, path string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
