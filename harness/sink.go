package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sink persists a finished export bundle and returns where it was stored.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes bundles into a directory on disk.
type DirSink struct {
	Dir string
}

// Save writes data to Dir/name. The file is written under a temporary name and
// renamed into place so readers never observe a partial bundle.
func (d DirSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.CreateTemp(d.Dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("writing bundle: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("closing bundle: %w", err)
	}

	path := filepath.Join(d.Dir, name)
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming bundle: %w", err)
	}
	return path, nil
}

// BundleName returns the file name for the seq'th export taken at t.
func BundleName(prefix string, t time.Time, seq int) string {
	return fmt.Sprintf("%s_%s_%03d.zip", prefix, t.UTC().Format("20060102T150405Z"), seq)
}
