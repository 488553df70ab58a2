package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives the finished document. It is only called for runs that
// reach Finalized.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes documents into a directory.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Save writes to a temporary file and renames it into place, so a failed
// write never leaves a partial document behind.
func (s *DirSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".fka-*.pdf.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close document: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("move document into place: %w", err)
	}
	return path, nil
}
