package ingest

import "os"

// readFile reads a file in full, distinct from content.Store.GetContent's
// hash-addressed lookup (used on the write path, before a hash exists).
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
