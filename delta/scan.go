package delta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/scalar"

	"github.com/aolwas/adt/exec"
	"github.com/aolwas/adt/kernel"
)

// fileEntry pairs an enumerated file with its raw selection vector, kept
// until access planning runs against the file's row-group metadata.
type fileEntry struct {
	file      exec.PartitionedFile
	selection []bool
}

// scanContext accumulates files and per-file errors while the log engine
// drives the visitor. It lives for exactly one enumeration and is merged
// into an immutable result when enumeration completes.
type scanContext struct {
	ctx             context.Context
	rootPath        string
	tableRoot       string
	partitionFields []arrow.Field

	entries []fileEntry
	errs    []error
}

// visit decodes one file-visitation event. Decode and deletion-vector
// failures are recorded and the file dropped; enumeration continues so the
// caller sees every error at once.
func (sc *scanContext) visit(add kernel.FileAdd) {
	values, err := sc.decodePartitionValues(add.PartitionValues)
	if err != nil {
		sc.errs = append(sc.errs, fmt.Errorf("file %q: %w", add.Path, err))
		return
	}

	var selection []bool
	if add.DeletionVector != nil {
		selection, err = add.DeletionVector.Materialize(sc.ctx, sc.tableRoot)
		if err != nil {
			sc.errs = append(sc.errs, fmt.Errorf("file %q: materializing deletion vector: %w", add.Path, err))
			return
		}
	}

	sc.entries = append(sc.entries, fileEntry{
		file: exec.PartitionedFile{
			Path:            joinTablePath(sc.rootPath, add.Path),
			Size:            add.Size,
			PartitionValues: values,
		},
		selection: selection,
	})
}

// decodePartitionValues parses the log's string-encoded partition values
// into typed scalars, one per partition field in declaration order. A value
// absent from the log decodes to null.
func (sc *scanContext) decodePartitionValues(raw map[string]string) ([]scalar.Scalar, error) {
	if len(sc.partitionFields) == 0 {
		return nil, nil
	}
	values := make([]scalar.Scalar, len(sc.partitionFields))
	for i, f := range sc.partitionFields {
		v, ok := raw[f.Name]
		if !ok {
			values[i] = scalar.MakeNullScalar(f.Type)
			continue
		}
		s, err := scalar.ParseScalar(f.Type, v)
		if err != nil {
			return nil, fmt.Errorf("decoding partition value %s=%q as %s: %w", f.Name, v, f.Type, err)
		}
		values[i] = s
	}
	return values, nil
}

// enumerateFiles drives the scan's file visitation to completion and merges
// the accumulated state. Per-file errors fail the whole enumeration; no
// partial file list is ever returned.
func enumerateFiles(ctx context.Context, scan kernel.Scan, snapshot kernel.Snapshot, rootPath string, partitionFields []arrow.Field) ([]fileEntry, error) {
	sc := &scanContext{
		ctx:             ctx,
		rootPath:        rootPath,
		tableRoot:       snapshot.TableRoot(),
		partitionFields: partitionFields,
	}
	if err := scan.VisitFiles(ctx, sc.visit); err != nil {
		return nil, err
	}
	if len(sc.errs) > 0 {
		return nil, errors.Join(sc.errs...)
	}
	return sc.entries, nil
}

// joinTablePath resolves a log-relative file path against the table root's
// store-scoped path.
func joinTablePath(rootPath, rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if rootPath == "" {
		return "/" + rel
	}
	return strings.TrimSuffix(rootPath, "/") + "/" + rel
}
