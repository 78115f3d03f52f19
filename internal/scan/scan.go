// Package scan implements the collection scanner (C2): a streaming walk of a
// collection root that yields files matching a glob pattern, honoring a
// default set of directory exclusions.
package scan

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/epappas/agentroot-go/internal/agenterr"
	"github.com/epappas/agentroot-go/internal/rootlog"
)

// DefaultExcludeDirs are always skipped regardless of caller-supplied
// exclusions (spec §4.2).
var DefaultExcludeDirs = []string{
	"node_modules", ".git", ".cache", "vendor", "dist", "build",
	"__pycache__", ".venv", "target",
}

// Options configures a scan.
type Options struct {
	// Root is the collection root directory.
	Root string
	// Pattern is a doublestar glob matched against the collection-relative
	// path (e.g. "**/*.md"). Empty means match everything.
	Pattern string
	// FollowSymlinks resolves symbolic-link entries: a link to a regular file
	// is yielded, a link to a directory or a dangling link is skipped. Linked
	// directories are never descended into. When false, link entries are
	// yielded without being resolved.
	FollowSymlinks bool
	// ExcludeHidden skips dot-prefixed files and directories.
	ExcludeHidden bool
	// ExcludeDirs is merged with DefaultExcludeDirs.
	ExcludeDirs []string
	// Logger receives debug-level notes about skipped entries; nil uses rootlog.Default().
	Logger *slog.Logger
}

// Result is one discovered file (spec §4.2: "files only").
type Result struct {
	// AbsPath is the absolute filesystem path.
	AbsPath string
	// RelPath is the path relative to Options.Root, using '/' separators.
	RelPath string
}

// Scan walks root and sends every matching file to the returned channel,
// closing it when the walk completes, ctx is cancelled, or an unrecoverable
// walk error occurs. The scanner itself does no caching (spec §4.2) —
// symlink-loop safety relies on the underlying walk when FollowSymlinks is
// false (the default), since fs.WalkDir never follows symlinks itself.
func Scan(ctx context.Context, opts Options) (<-chan Result, <-chan error) {
	results := make(chan Result, runtime.NumCPU()*4)
	errs := make(chan error, 1)
	logger := rootlog.Or(opts.Logger)

	exclude := make(map[string]struct{}, len(DefaultExcludeDirs)+len(opts.ExcludeDirs))
	for _, d := range DefaultExcludeDirs {
		exclude[d] = struct{}{}
	}
	for _, d := range opts.ExcludeDirs {
		exclude[d] = struct{}{}
	}

	go func() {
		defer close(results)
		defer close(errs)

		root := opts.Root
		if root == "" {
			root = "."
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- agenterr.Wrap(agenterr.IO, err, "resolve collection root")
			return
		}

		walkErr := fs.WalkDir(os.DirFS(absRoot), ".", func(relPath string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Debug("scan: walk error, skipping entry", slog.String("path", relPath), slog.String("error", err.Error()))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			name := d.Name()
			if relPath != "." && opts.ExcludeHidden && strings.HasPrefix(name, ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if _, skip := exclude[name]; skip {
					return fs.SkipDir
				}
				return nil
			}

			if opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
				info, statErr := os.Stat(filepath.Join(absRoot, relPath))
				if statErr != nil || info.IsDir() {
					return nil
				}
			}

			slashPath := filepath.ToSlash(relPath)
			if opts.Pattern != "" {
				matched, matchErr := doublestar.Match(opts.Pattern, slashPath)
				if matchErr != nil {
					return agenterr.Wrapf(agenterr.InvalidInput, matchErr, "invalid glob pattern %q", opts.Pattern)
				}
				if !matched {
					return nil
				}
			}

			select {
			case results <- Result{AbsPath: filepath.Join(absRoot, relPath), RelPath: slashPath}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if walkErr != nil && walkErr != ctx.Err() {
			errs <- agenterr.Wrap(agenterr.IO, walkErr, "walk collection root")
		} else if walkErr != nil {
			errs <- agenterr.Wrap(agenterr.Cancelled, walkErr, "scan cancelled")
		}
	}()

	return results, errs
}
