package kv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/focusboard/internal/filelock"
)

const (
	fileMode    = 0o600
	dirMode     = 0o750
	slotExt     = ".json"
	lockName    = ".kv.lock"
	tempPattern = ".kv-*.tmp"
)

// File stores each key as <dir>/<key>.json. Writes go through a temp file and
// a rename under an advisory lock, so readers never see a partial value.
type File struct {
	dir string
}

// NewFile creates a File store rooted at dir, creating dir if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory holding the slots.
func (f *File) Dir() string { return f.dir }

// Path returns the file backing key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+slotExt)
}

// Get implements Storage.
func (f *File) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(f.Path(key)) //nolint:gosec // slot path built from a validated key
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Storage.
func (f *File) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return filelock.With(filepath.Join(f.dir, lockName), func() error {
		return f.writeAtomic(f.Path(key), []byte(value))
	})
}

// Close implements Storage.
func (f *File) Close() error { return nil }

func (f *File) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
