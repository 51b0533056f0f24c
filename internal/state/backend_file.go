package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"foodhub/internal/fileutil"
)

const (
	lockFileName   = "foodhub.lock"
	lockRetryDelay = 25 * time.Millisecond
)

// FileBackend stores each key as <dir>/<key>.json. Writes are atomic and a
// sibling lock file provides cross-process exclusion.
type FileBackend struct {
	dir  string
	lock *flock.Flock
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("file backend requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileBackend{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Path returns the file that holds key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if err := fileutil.WriteFileAtomic(b.Path(key), value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Copy duplicates the file holding srcKey into the file for dstKey.
func (b *FileBackend) Copy(_ context.Context, srcKey, dstKey string) error {
	if err := fileutil.CopyFile(b.Path(srcKey), b.Path(dstKey)); err != nil {
		return fmt.Errorf("copy %s to %s: %w", srcKey, dstKey, err)
	}
	return nil
}

// Lock takes the directory lock, retrying until ctx is done.
func (b *FileBackend) Lock(ctx context.Context) (func() error, error) {
	return lockWithContext(ctx, b.lock)
}

func (b *FileBackend) Close() error {
	return nil
}

func lockWithContext(ctx context.Context, fl *flock.Flock) (func() error, error) {
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, fl.Path())
		}
		return nil, fmt.Errorf("acquire lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, fl.Path())
	}
	return fl.Unlock, nil
}
