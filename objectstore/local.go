package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore serves objects from the local filesystem. Paths are absolute
// filesystem paths.
type LocalStore struct{}

// NewLocalStore creates a local filesystem store.
func NewLocalStore() *LocalStore { return &LocalStore{} }

// Open implements Store.
func (s *LocalStore) Open(ctx context.Context, path string) (Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objectstore: opening %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("objectstore: stat %q: %w", path, err)
	}
	return &localObject{File: f, size: info.Size()}, nil
}

// List implements Store.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	err := filepath.WalkDir(prefix, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, ObjectInfo{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: listing %q: %w", prefix, err)
	}
	return out, nil
}

type localObject struct {
	*os.File
	size int64
}

func (o *localObject) Size() int64 { return o.size }
