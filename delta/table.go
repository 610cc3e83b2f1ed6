package delta

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aolwas/adt/catalog"
	"github.com/aolwas/adt/exec"
	"github.com/aolwas/adt/filter"
	"github.com/aolwas/adt/kernel"
	"github.com/aolwas/adt/objectstore"
)

// OptVersion pins every scan of a table to a fixed log version. Scans may
// still override it with a TimePoint.
const OptVersion = "version"

// ErrNoEngine is returned by Open when no log engine is supplied. The DELTA
// factory needs a kernel.Engine from the embedding program.
var ErrNoEngine = errors.New("delta: no log engine configured")

// Table exposes one Delta table as a catalog.Provider. A Table holds no
// mutable state after construction; each Scan resolves its own snapshot, so
// concurrent scans are independent.
type Table struct {
	engine   kernel.Engine
	location string
	store    objectstore.Store
	version  *int64
	log      zerolog.Logger
}

// Open constructs a provider for the table at location. The location is
// normalized to a folder (trailing separator) before use. Open resolves a
// snapshot once to verify the log is readable; an unreadable log is fatal.
func Open(ctx context.Context, engine kernel.Engine, location string, options map[string]string, log zerolog.Logger) (*Table, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	location = EnsureFolderLocation(location)

	var version *int64
	if v, ok := options[OptVersion]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("delta: invalid %s option %q: %w", OptVersion, v, err)
		}
		version = &n
	}

	store, err := objectstore.Resolve(location, options)
	if err != nil {
		return nil, err
	}

	t := &Table{
		engine:   engine,
		location: location,
		store:    store,
		version:  version,
		log:      log.With().Str("table", location).Logger(),
	}
	if _, err := t.snapshot(ctx, nil); err != nil {
		return nil, fmt.Errorf("delta: opening table log at %q: %w", location, err)
	}
	return t, nil
}

// Factory adapts Open into a catalog.Factory bound to one log engine.
func Factory(engine kernel.Engine, log zerolog.Logger) catalog.Factory {
	return func(ctx context.Context, location string, options map[string]string) (catalog.Provider, error) {
		return Open(ctx, engine, location, options, log)
	}
}

// EnsureFolderLocation normalizes a table location to end with a separator.
func EnsureFolderLocation(location string) string {
	if strings.HasSuffix(location, "/") {
		return location
	}
	return location + "/"
}

// snapshot resolves the table state a scan sees: the TimePoint-pinned
// version when given, otherwise the table's configured version, otherwise
// the latest.
func (t *Table) snapshot(ctx context.Context, tp *catalog.TimePoint) (kernel.Snapshot, error) {
	version := t.version
	if tp != nil {
		if tp.Unit != "version" {
			return nil, fmt.Errorf("delta: unsupported time point unit %q (only \"version\")", tp.Unit)
		}
		n, err := strconv.ParseInt(tp.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("delta: invalid time point version %q: %w", tp.Value, err)
		}
		version = &n
	}
	return t.engine.Snapshot(ctx, t.location, version)
}

// Schema implements catalog.Provider.
func (t *Table) Schema(ctx context.Context) (*arrow.Schema, error) {
	snap, err := t.snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}
	schemas, err := ResolveSchemas(snap)
	if err != nil {
		return nil, err
	}
	return schemas.Logical, nil
}

// SupportsFiltersPushdown implements catalog.Provider. Every filter is
// inexact: deletion vectors and partition values narrow files, but data
// column predicates are never enforced row-exactly here.
func (t *Table) SupportsFiltersPushdown(filters []filter.Expression) []catalog.PushdownSupport {
	support := make([]catalog.PushdownSupport, len(filters))
	for i := range support {
		support[i] = catalog.PushdownInexact
	}
	return support
}

// Scan implements catalog.Provider.
func (t *Table) Scan(ctx context.Context, opts *catalog.ScanOptions) (*exec.ScanPlan, error) {
	if opts == nil {
		opts = &catalog.ScanOptions{}
	}

	snap, err := t.snapshot(ctx, opts.TimePoint)
	if err != nil {
		return nil, err
	}
	schemas, err := ResolveSchemas(snap)
	if err != nil {
		return nil, err
	}
	readSchema, err := projectReadSchema(snap.Schema(), schemas, opts.Projection)
	if err != nil {
		return nil, err
	}

	scan, err := t.engine.NewScan(ctx, snap, readSchema)
	if err != nil {
		return nil, err
	}
	rootPath, err := objectstore.TablePath(snap.TableRoot())
	if err != nil {
		return nil, err
	}
	entries, err := enumerateFiles(ctx, scan, snap, rootPath, schemas.PartitionFields)
	if err != nil {
		return nil, err
	}

	files := make([]exec.PartitionedFile, 0, len(entries))
	for _, e := range entries {
		if e.selection != nil {
			sizes, err := fetchRowGroupSizes(ctx, t.store, e.file.Path)
			if err != nil {
				return nil, err
			}
			e.file.Access = PlanRowGroupAccess(e.selection, sizes)
		}
		files = append(files, e.file)
	}

	plan := &exec.ScanPlan{
		ScanID:          uuid.NewString(),
		FileSchema:      schemas.FilePhysical,
		Files:           files,
		PartitionFields: schemas.PartitionFields,
		Predicate:       filter.Conjunction(opts.Filters),
		Projection:      opts.Projection,
		Limit:           opts.Limit,
	}
	t.log.Debug().
		Str("scan_id", plan.ScanID).
		Int64("version", snap.Version()).
		Int("files", len(files)).
		Msg("planned table scan")
	return plan, nil
}
