package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	tempFilePrefix = ".quotesync-tmp-"

	blobExt  = ".json"
	blobPerm = 0o644
)

// ErrInvalidKey is returned for keys that cannot be mapped to a file name.
var ErrInvalidKey = errors.New("invalid blob key")

// FileStore keeps each blob in its own file under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// ReadBlob implements ports.BlobStore.
func (f *FileStore) ReadBlob(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, true, nil
}

// WriteBlob implements ports.BlobStore.
func (f *FileStore) WriteBlob(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	return replaceFile(path, data, blobPerm)
}

// Close implements Backend. It is a no-op.
func (f *FileStore) Close() error {
	return nil
}

// Driver implements Backend.
func (f *FileStore) Driver() string {
	return DriverFile
}

func (f *FileStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return filepath.Join(f.dir, key+blobExt), nil
}

// replaceFile stages data next to target and renames it into place, so a
// reader sees either the previous blob or the new one. The staging file is
// removed on any failure.
func replaceFile(target string, data []byte, perm os.FileMode) (err error) {
	staged, err := os.CreateTemp(filepath.Dir(target), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("staging %s: %w", target, err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreMissing(os.Remove(staged.Name())))
		}
	}()

	if err = staged.Chmod(perm); err != nil {
		return errors.Join(fmt.Errorf("setting mode on staged blob: %w", err), staged.Close())
	}

	if _, err = staged.Write(data); err != nil {
		return errors.Join(fmt.Errorf("writing staged blob: %w", err), staged.Close())
	}

	if err = staged.Sync(); err != nil {
		return errors.Join(fmt.Errorf("flushing staged blob: %w", err), staged.Close())
	}

	if err = staged.Close(); err != nil {
		return fmt.Errorf("closing staged blob: %w", err)
	}

	if err = os.Rename(staged.Name(), target); err != nil {
		return fmt.Errorf("replacing %s: %w", target, err)
	}

	return nil
}

func ignoreMissing(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
