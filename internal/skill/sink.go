package skill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// ErrOutputRoot reports an output root that cannot hold skills.
var ErrOutputRoot = errors.New("output root is not a writable directory")

// IsStructural reports whether a write error affects every page rather than
// one: the output root is unusable, the disk is full or read-only, or
// permission is denied.
func IsStructural(err error) bool {
	return errors.Is(err, ErrOutputRoot) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EROFS)
}

// FileSink writes artifacts to disk. Each file is written to a temporary
// file next to its destination and renamed into place.
type FileSink struct {
	root string

	once    sync.Once
	rootErr error
}

// NewFileSink returns a FileSink for the output root.
func NewFileSink(root string) *FileSink {
	return &FileSink{root: root}
}

func (s *FileSink) Write(ctx context.Context, a *Artifact) error {
	s.once.Do(func() {
		s.rootErr = prepareRoot(s.root)
	})
	if s.rootErr != nil {
		return s.rootErr
	}

	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := writeAtomic(ctx, a.Path, a.Content); err != nil {
		return err
	}

	slog.Debug("Skill written", "name", a.Name, "path", a.Path, "bytes", len(a.Content))
	return nil
}

func prepareRoot(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputRoot, root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputRoot, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrOutputRoot, root)
	}
	return nil
}

func writeAtomic(ctx context.Context, path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	// Cancellation after buffering leaves the previous version in place.
	if err := ctx.Err(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// WriterSink prints artifacts to a writer, one after another.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink printing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(_ context.Context, a *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(a.Content)
	return err
}

// DryRunSink reports artifacts without touching the filesystem.
type DryRunSink struct{}

func (DryRunSink) Write(_ context.Context, a *Artifact) error {
	slog.Info("Would write skill", "name", a.Name, "path", a.Path, "url", a.URL, "bytes", len(a.Content))
	return nil
}
