// Package objectstore provides read-only access to the storage backing
// tables: local filesystems for development and S3-compatible stores for
// object storage. Stores are resolved from a table location's URL scheme
// and shared read-only across concurrent scans.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
)

// Object is an open, random-access handle to a stored object. It satisfies
// the reader contract parquet metadata and column readers require.
type Object interface {
	io.ReaderAt
	io.Seeker
	io.Closer

	// Size returns the object size in bytes.
	Size() int64
}

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	// Path is store-scoped: a filesystem path for local stores, an
	// absolute URL path (leading separator, bucket excluded) for S3.
	Path string

	// Size in bytes.
	Size int64
}

// Store is a read-only object store. Implementations MUST be goroutine-safe;
// this module never writes through a Store.
type Store interface {
	// Open opens the object at the store-scoped path for random access.
	Open(ctx context.Context, path string) (Object, error)

	// List returns all objects under the store-scoped prefix, recursively.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// EnsureScheme parses a location into a URL, defaulting bare filesystem
// paths to the file scheme. Relative paths are made absolute.
func EnsureScheme(location string) (*url.URL, error) {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return u, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("objectstore: resolving %q: %w", location, err)
	}
	return &url.URL{Scheme: "file", Path: abs}, nil
}

// Resolve returns the Store serving a table location, chosen by URL scheme.
// Options configure the backend (see NewS3Store for S3 option keys).
func Resolve(location string, options map[string]string) (Store, error) {
	u, err := EnsureScheme(location)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "file":
		return NewLocalStore(), nil
	case "s3", "s3a":
		return NewS3Store(u.Host, options)
	case "memory":
		// In-memory kernel engines have no physical files to read.
		return nil, fmt.Errorf("objectstore: scheme %q has no object store", u.Scheme)
	default:
		return nil, fmt.Errorf("objectstore: unsupported scheme %q", u.Scheme)
	}
}

// TablePath returns the store-scoped path of a table location: the URL path
// for object stores (bucket excluded), the filesystem path for local stores.
func TablePath(location string) (string, error) {
	u, err := EnsureScheme(location)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(u.Path, "/"), nil
}
