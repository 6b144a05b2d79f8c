package changedetect

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"

	"github.com/unityscan/depgraph/internal/scanerr"
	"github.com/unityscan/depgraph/internal/walker"
)

// Classification categorizes one entry from a walk relative to the cache.
type Classification string

const (
	ClassNew       Classification = "new"
	ClassModified  Classification = "modified"
	ClassUnchanged Classification = "unchanged"
	ClassDeleted   Classification = "deleted"
)

// Classified pairs an input path with its outcome. Entry is unset for
// ClassDeleted entries (the file no longer exists to describe).
type Classified struct {
	Path           string
	Classification Classification
	Entry          walker.Entry
}

// Detector classifies walker.Entry values against a persisted Cache.
type Detector struct {
	cache     *Cache
	deepCheck bool
}

// NewDetector builds a Detector. With deepCheck on, the xxh3 content hash
// alone decides modified vs unchanged for a previously seen file, so a
// stat-only change with identical content is unchanged; with it off, size
// and mtime decide (spec §4.2's "deep_check" option).
func NewDetector(cache *Cache, deepCheck bool) *Detector {
	return &Detector{cache: cache, deepCheck: deepCheck}
}

// Classify compares the current walk's entries against the cache, records
// new and modified paths in the cache (unchanged paths keep their stored
// signature), and returns deletions for every previously-tracked path
// absent from entries, removing those from the cache.
func (d *Detector) Classify(ctx context.Context, entries []walker.Entry) ([]Classified, []*scanerr.IoError, error) {
	var out []Classified
	var errs []*scanerr.IoError

	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return out, errs, &scanerr.CancelledError{Stage: "change_detect"}
		}
		seen[e.Path] = true

		prev, found, err := d.cache.Get(ctx, e.Path)
		if err != nil {
			return nil, errs, err
		}

		sameStat := found && prev.SizeBytes == e.Size && prev.ModTimeNanos == e.ModTime

		var hash string
		if d.deepCheck {
			h, hashErr := contentHash(e.Path)
			if hashErr != nil {
				errs = append(errs, &scanerr.IoError{Path: e.Path, Cause: hashErr})
				continue
			}
			hash = h
		}

		// deepCheck takes priority over the stat comparison: a stat-only
		// change (e.g. a bare mtime bump) with identical content hashes must
		// classify as unchanged, not modified.
		class := ClassNew
		switch {
		case !found:
			class = ClassNew
		case d.deepCheck:
			if hash != prev.ContentHash {
				class = ClassModified
			} else {
				class = ClassUnchanged
			}
		case !sameStat:
			class = ClassModified
		default:
			class = ClassUnchanged
		}

		if class != ClassUnchanged {
			if err := d.cache.Upsert(ctx, Signature{
				Path: e.Path, ModTimeNanos: e.ModTime, SizeBytes: e.Size, ContentHash: hash,
			}); err != nil {
				return nil, errs, err
			}
		}

		out = append(out, Classified{Path: e.Path, Classification: class, Entry: e})
	}

	tracked, err := d.cache.AllPaths(ctx)
	if err != nil {
		return nil, errs, err
	}
	for _, p := range tracked {
		if !seen[p] {
			out = append(out, Classified{Path: p, Classification: ClassDeleted})
			if err := d.cache.Delete(ctx, p); err != nil {
				return nil, errs, err
			}
		}
	}

	return out, errs, nil
}

// contentHash computes the xxh3 digest of a file's contents, streaming to
// bound memory use on large assets.
func contentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
