package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrInvalidName is returned for names that are not a single path element.
var ErrInvalidName = errors.New("invalid file name")

// DiskStore keeps files in a single flat directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed and returns a store rooted at it.
func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &DiskStore{dir: abs}, nil
}

// EnsureDir creates dir and any missing parents and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

// Path resolves name inside the store.
func (s *DiskStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes r to a new file called name. The file must not already exist.
// A partially written file is removed on error.
func (s *DiskStore) Save(r io.Reader, name string) (string, int64, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}

	return path, n, nil
}

// CopyFrom copies the file at srcPath into the store under name.
func (s *DiskStore) CopyFrom(srcPath, name string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()

	path, _, err := s.Save(src, name)
	return path, err
}

// Remove deletes path. A file that is already gone is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
