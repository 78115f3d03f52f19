// Package vpath implements the agentroot:// virtual path scheme (spec §6):
// the canonical handle for a document, independent of where its collection
// is actually rooted on disk.
package vpath

import (
	"path/filepath"
	"strings"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// Scheme is the virtual path prefix.
const Scheme = "agentroot://"

// IsVirtualPath reports whether s begins with the agentroot:// scheme.
func IsVirtualPath(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// Parse splits a virtual path into its collection and relative path.
// Parsing splits on the first '/' after the scheme (spec §6); it does not
// normalize case or separators — use Normalize first if that's wanted.
func Parse(vpath string) (collection, relPath string, err error) {
	if !IsVirtualPath(vpath) {
		return "", "", agenterr.Newf(agenterr.InvalidInput, "not a virtual path: %s", vpath)
	}
	rest := vpath[len(Scheme):]
	collection, relPath, _ = strings.Cut(rest, "/")
	if collection == "" {
		return "", "", agenterr.Newf(agenterr.InvalidInput, "missing collection in virtual path: %s", vpath)
	}
	return collection, relPath, nil
}

// Build constructs a virtual path from a collection name and a relative path,
// trimming a leading '/' from the relative part (spec §6).
func Build(collection, relPath string) string {
	return Scheme + collection + "/" + strings.TrimPrefix(relPath, "/")
}

// Normalize lowercases the collection name, folds '\' to '/', and drops
// empty and "." path segments (spec §6). Inputs that are not virtual paths
// are returned unchanged. Normalize is idempotent and satisfies
// parse ∘ build = id modulo collection case (spec §8).
func Normalize(vpath string) string {
	if !IsVirtualPath(vpath) {
		return vpath
	}
	rest := vpath[len(Scheme):]
	collection, relPath, _ := strings.Cut(rest, "/")
	collection = strings.ToLower(collection)

	relPath = strings.ReplaceAll(relPath, "\\", "/")
	segments := strings.Split(relPath, "/")
	kept := segments[:0]
	for _, seg := range segments {
		if seg == "" || seg == "." {
			continue
		}
		kept = append(kept, seg)
	}
	return Scheme + collection + "/" + strings.Join(kept, "/")
}

// ToVirtualPath converts an absolute filesystem path under collectionRoot
// into a virtual path for collectionName.
func ToVirtualPath(absPath, collectionName, collectionRoot string) (string, error) {
	rel, err := filepath.Rel(collectionRoot, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", agenterr.Newf(agenterr.InvalidInput, "path %s is not under collection root %s", absPath, collectionRoot)
	}
	return Build(collectionName, filepath.ToSlash(rel)), nil
}

// ResolveVirtualPath resolves a virtual path to an absolute filesystem path,
// given a map of collection name to collection root. Returns NotFound if the
// collection isn't in the map.
func ResolveVirtualPath(vpath string, collectionRoots map[string]string) (string, error) {
	collection, relPath, err := Parse(vpath)
	if err != nil {
		return "", err
	}
	root, ok := collectionRoots[collection]
	if !ok {
		return "", agenterr.Newf(agenterr.NotFound, "collection not found: %s", collection)
	}
	return filepath.Join(root, filepath.FromSlash(relPath)), nil
}
