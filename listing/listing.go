// Package listing provides a catalog.Provider for plain parquet directories:
// no transaction log, table state is whatever files a store listing returns.
// Hive-style path segments (col=value) become string partition columns.
package listing

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aolwas/adt/catalog"
	"github.com/aolwas/adt/exec"
	"github.com/aolwas/adt/filter"
	"github.com/aolwas/adt/objectstore"
)

// OptFileExtension overrides the data file extension (default ".parquet").
const OptFileExtension = "file_extension"

// ErrNoDataFiles is returned when a listing finds no data files under the
// table prefix.
var ErrNoDataFiles = errors.New("listing: no data files found")

// Table exposes a parquet directory as a catalog.Provider. Each Scan
// re-lists the directory, so concurrent scans are independent.
type Table struct {
	store     objectstore.Store
	prefix    string
	extension string
	log       zerolog.Logger
}

// NewTable constructs a provider for the directory at location. The listing
// runs once at construction to verify the location is readable and contains
// at least one data file.
func NewTable(ctx context.Context, location string, options map[string]string, log zerolog.Logger) (*Table, error) {
	store, err := objectstore.Resolve(location, options)
	if err != nil {
		return nil, err
	}
	prefix, err := objectstore.TablePath(location)
	if err != nil {
		return nil, err
	}
	ext := options[OptFileExtension]
	if ext == "" {
		ext = ".parquet"
	}

	t := &Table{
		store:     store,
		prefix:    prefix,
		extension: ext,
		log:       log.With().Str("table", location).Logger(),
	}
	if _, err := t.listFiles(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Factory adapts NewTable into a catalog.Factory.
func Factory(log zerolog.Logger) catalog.Factory {
	return func(ctx context.Context, location string, options map[string]string) (catalog.Provider, error) {
		return NewTable(ctx, location, options, log)
	}
}

func (t *Table) listFiles(ctx context.Context) ([]objectstore.ObjectInfo, error) {
	infos, err := t.store.List(ctx, t.prefix)
	if err != nil {
		return nil, err
	}
	files := infos[:0]
	for _, info := range infos {
		if strings.HasSuffix(info.Path, t.extension) {
			files = append(files, info)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %q files under %q", ErrNoDataFiles, t.extension, t.prefix)
	}
	return files, nil
}

// relPath strips the table prefix from a listed path.
func (t *Table) relPath(p string) string {
	return strings.TrimPrefix(strings.TrimPrefix(p, t.prefix), "/")
}

// partitionColumns extracts hive-style col=value directory segments from a
// table-relative file path, in path order.
func partitionColumns(rel string) []string {
	var cols []string
	dir := path.Dir(rel)
	if dir == "." {
		return nil
	}
	for _, seg := range strings.Split(dir, "/") {
		if name, _, ok := strings.Cut(seg, "="); ok {
			cols = append(cols, name)
		}
	}
	return cols
}

// partitionValue returns the value of one hive segment, or false when the
// path carries no segment for the column.
func partitionValue(rel, column string) (string, bool) {
	dir := path.Dir(rel)
	for _, seg := range strings.Split(dir, "/") {
		if name, value, ok := strings.Cut(seg, "="); ok && name == column {
			return value, true
		}
	}
	return "", false
}

// fileSchema reads the Arrow schema of one parquet file's footer.
func (t *Table) fileSchema(ctx context.Context, p string) (*arrow.Schema, error) {
	obj, err := t.store.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	rdr, err := file.NewParquetReader(obj)
	if err != nil {
		return nil, fmt.Errorf("listing: reading parquet metadata of %q: %w", p, err)
	}
	defer rdr.Close()
	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	return fr.Schema()
}

// resolve lists the directory and derives the schema views from the first
// listed file: its footer supplies the data columns, its path the partition
// columns. Hive partition values are untyped in paths, so partition columns
// are strings.
func (t *Table) resolve(ctx context.Context) ([]objectstore.ObjectInfo, *arrow.Schema, []arrow.Field, error) {
	files, err := t.listFiles(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	dataSchema, err := t.fileSchema(ctx, files[0].Path)
	if err != nil {
		return nil, nil, nil, err
	}
	var partitionFields []arrow.Field
	for _, name := range partitionColumns(t.relPath(files[0].Path)) {
		partitionFields = append(partitionFields, arrow.Field{
			Name:     name,
			Type:     arrow.BinaryTypes.String,
			Nullable: true,
		})
	}
	return files, dataSchema, partitionFields, nil
}

// Schema implements catalog.Provider.
func (t *Table) Schema(ctx context.Context) (*arrow.Schema, error) {
	_, dataSchema, partitionFields, err := t.resolve(ctx)
	if err != nil {
		return nil, err
	}
	fields := make([]arrow.Field, 0, dataSchema.NumFields()+len(partitionFields))
	fields = append(fields, dataSchema.Fields()...)
	fields = append(fields, partitionFields...)
	return arrow.NewSchema(fields, nil), nil
}

// SupportsFiltersPushdown implements catalog.Provider. Listings never
// enforce predicates.
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
	if opts.TimePoint != nil {
		return nil, fmt.Errorf("listing: directory tables have no versions to travel to")
	}

	files, dataSchema, partitionFields, err := t.resolve(ctx)
	if err != nil {
		return nil, err
	}

	planFiles := make([]exec.PartitionedFile, 0, len(files))
	for _, info := range files {
		var values []scalar.Scalar
		for _, f := range partitionFields {
			if v, ok := partitionValue(t.relPath(info.Path), f.Name); ok {
				values = append(values, scalar.NewStringScalar(v))
			} else {
				values = append(values, scalar.MakeNullScalar(f.Type))
			}
		}
		planFiles = append(planFiles, exec.PartitionedFile{
			Path:            info.Path,
			Size:            info.Size,
			PartitionValues: values,
		})
	}

	plan := &exec.ScanPlan{
		ScanID:          uuid.NewString(),
		FileSchema:      dataSchema,
		Files:           planFiles,
		PartitionFields: partitionFields,
		Predicate:       filter.Conjunction(opts.Filters),
		Projection:      opts.Projection,
		Limit:           opts.Limit,
	}
	t.log.Debug().
		Str("scan_id", plan.ScanID).
		Int("files", len(planFiles)).
		Msg("planned directory scan")
	return plan, nil
}
