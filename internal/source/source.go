// Package source resolves a scan target — a local directory or a git URL —
// into a local directory path the FileWalker can operate on.
//
// Grounded on recera-onyx-coding-agent's internal/git/git.go (CloneRepository
// via go-git's PlainClone into a temp dir); generalized here to also accept
// plain local paths, and to log through zap instead of fmt.Printf.
package source

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Resolution describes where a scan should read from.
type Resolution struct {
	// Dir is the local directory to walk.
	Dir string
	// Cloned is true when Dir is a temporary clone that the caller should
	// remove once the scan completes.
	Cloned bool
}

// Resolve interprets target as a git URL (ssh://, git://, https:// with a
// ".git" suffix, or git@host:path) or a local filesystem path, returning a
// Resolution the walker can use directly.
func Resolve(target string, logger *zap.Logger) (*Resolution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !looksLikeGitURL(target) {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("failed to stat project path %s: %w", target, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("project path %s is not a directory", target)
		}
		return &Resolution{Dir: target}, nil
	}

	dir, err := os.MkdirTemp("", "unityscan-clone-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for clone: %w", err)
	}

	logger.Info("cloning project source", zap.String("url", target), zap.String("dir", dir))

	if _, err := git.PlainClone(dir, false, &git.CloneOptions{URL: target}); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to clone %s: %w", target, err)
	}

	return &Resolution{Dir: dir, Cloned: true}, nil
}

// Cleanup removes a cloned directory. A no-op for non-cloned resolutions.
func (r *Resolution) Cleanup() error {
	if !r.Cloned {
		return nil
	}
	return os.RemoveAll(r.Dir)
}

func looksLikeGitURL(target string) bool {
	if strings.HasPrefix(target, "git@") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch u.Scheme {
	case "git", "ssh":
		return true
	case "http", "https":
		return strings.HasSuffix(u.Path, ".git")
	default:
		return false
	}
}
