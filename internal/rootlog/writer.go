package rootlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// RotatingWriter is an io.Writer that rotates its backing file once it
// crosses maxSize, keeping at most maxFiles rotated copies (path.1, path.2, …).
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu      sync.Mutex
	file    *os.File
	written int64
}

// NewRotatingWriter opens (creating if needed) the log file at path and
// prepares it for size-based rotation.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "rootlog: rotation failed: %v\n", err)
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.written = info.Size()
	return nil
}

// rotate renames path -> path.1 -> path.2 ..., dropping anything beyond
// maxFiles, then reopens a fresh file at path.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("close log file: %w", err)
		}
		w.file = nil
	}

	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return fmt.Errorf("glob rotated files: %w", err)
	}

	type rotated struct {
		path string
		num  int
	}
	var files []rotated
	for _, m := range matches {
		suffix := strings.TrimPrefix(filepath.Base(m), base+".")
		num, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		files = append(files, rotated{path: m, num: num})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].num > files[j].num })

	for _, f := range files {
		if f.num >= w.maxFiles {
			_ = os.Remove(f.path)
		}
	}
	for _, f := range files {
		if f.num < w.maxFiles {
			_ = os.Rename(f.path, fmt.Sprintf("%s.%d", w.path, f.num+1))
		}
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.path+".1"); err != nil {
			return fmt.Errorf("rotate log file: %w", err)
		}
	}

	w.written = 0
	return w.openFile()
}

// DefaultLogDir returns ~/.agentroot/logs, falling back to a temp directory
// when the home directory cannot be resolved.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".agentroot", "logs")
	}
	return filepath.Join(home, ".agentroot", "logs")
}

// DefaultLogPath returns the default log file path under DefaultLogDir.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "agentroot.log")
}
