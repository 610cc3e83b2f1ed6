package delta

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/rs/zerolog"

	"github.com/aolwas/adt/catalog"
	"github.com/aolwas/adt/exec"
	"github.com/aolwas/adt/filter"
	"github.com/aolwas/adt/kernel"
)

// writeIDFile writes a single-column int64 parquet file of the given row
// count, split into row groups of groupSize rows.
func writeIDFile(t *testing.T, path string, rows, groupSize int64) {
	t.Helper()
	mem := memory.NewGoAllocator()

	bld := array.NewInt64Builder(mem)
	defer bld.Release()
	for i := int64(0); i < rows; i++ {
		bld.Append(i)
	}
	arr := bld.NewArray()
	defer arr.Release()

	schema := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int64}}, nil)
	col := arrow.NewColumnFromArr(schema.Field(0), arr)
	defer col.Release()
	tbl := array.NewTable(schema, []arrow.Column{col}, rows)
	defer tbl.Release()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	props := parquet.NewWriterProperties(parquet.WithMaxRowGroupLength(groupSize))
	if err := pqarrow.WriteTable(tbl, f, groupSize, props, pqarrow.DefaultWriterProps()); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

// newSalesTable registers a two-file table under a temp dir: file a.parquet
// fully live, file b.parquet (two 100-row groups) with rows 150-199 deleted.
// Version 0 holds only a.parquet for time travel.
func newSalesTable(t *testing.T) (*kernel.StaticEngine, string) {
	t.Helper()
	dir := t.TempDir()
	writeIDFile(t, filepath.Join(dir, "a.parquet"), 100, 100)
	writeIDFile(t, filepath.Join(dir, "b.parquet"), 200, 100)

	selection := make([]bool, 200)
	for i := range selection {
		selection[i] = i < 150
	}

	fileA := kernel.StaticFile{
		Path:            "a.parquet",
		Size:            100,
		PartitionValues: map[string]string{"region": "eu"},
	}
	fileB := kernel.StaticFile{
		Path:            "b.parquet",
		Size:            200,
		PartitionValues: map[string]string{"region": "us"},
		Selection:       selection,
	}

	engine := kernel.NewStaticEngine()
	engine.RegisterTable(dir, &kernel.StaticTable{
		Schema: kernel.NewStructType(
			kernel.StructField{Name: "id", Type: kernel.TypeLong},
			kernel.StructField{Name: "region", Type: kernel.TypeString, Nullable: true},
		),
		PartitionColumns: []string{"region"},
		Versions: map[int64][]kernel.StaticFile{
			0: {fileA},
			1: {fileA, fileB},
		},
		Current: 1,
	})
	return engine, dir
}

func TestOpen(t *testing.T) {
	engine, dir := newSalesTable(t)
	ctx := context.Background()

	tbl, err := Open(ctx, engine, dir, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	schema, err := tbl.Schema(ctx)
	if err != nil {
		t.Fatalf("Schema() error: %v", err)
	}
	if schema.NumFields() != 2 || schema.Field(0).Name != "id" || schema.Field(1).Name != "region" {
		t.Errorf("Schema() = %v", schema)
	}

	if _, err := Open(ctx, engine, "/no/such/table", nil, zerolog.Nop()); err == nil {
		t.Error("Open() expected error for unregistered location")
	}
	if _, err := Open(ctx, nil, dir, nil, zerolog.Nop()); err == nil {
		t.Error("Open() expected error for nil engine")
	}
}

func TestEnsureFolderLocation(t *testing.T) {
	if got := EnsureFolderLocation("s3://bucket"); got != "s3://bucket/" {
		t.Errorf("EnsureFolderLocation() = %q", got)
	}
	if got := EnsureFolderLocation("s3://bucket/"); got != "s3://bucket/" {
		t.Errorf("EnsureFolderLocation() = %q", got)
	}
}

func TestSupportsFiltersPushdown(t *testing.T) {
	engine, dir := newSalesTable(t)
	tbl, err := Open(context.Background(), engine, dir, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	filters := []filter.Expression{
		filter.Equal(filter.Column("region"), filter.Literal("eu")),
		filter.GreaterThan(filter.Column("id"), filter.Literal(int64(10))),
	}
	support := tbl.SupportsFiltersPushdown(filters)
	if len(support) != 2 {
		t.Fatalf("got %d entries, want 2", len(support))
	}
	for i, s := range support {
		if s != catalog.PushdownInexact {
			t.Errorf("filter %d support = %v, want inexact", i, s)
		}
	}
}

func TestScanPlan(t *testing.T) {
	engine, dir := newSalesTable(t)
	ctx := context.Background()
	tbl, err := Open(ctx, engine, dir, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	plan, err := tbl.Scan(ctx, nil)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if plan.ScanID == "" {
		t.Error("plan has no scan id")
	}
	if plan.FileSchema.NumFields() != 1 || plan.FileSchema.Field(0).Name != "id" {
		t.Errorf("file schema = %v, want only id", plan.FileSchema)
	}
	if len(plan.PartitionFields) != 1 || plan.PartitionFields[0].Name != "region" {
		t.Errorf("partition fields = %v", plan.PartitionFields)
	}
	if len(plan.Files) != 2 {
		t.Fatalf("plan has %d files, want 2", len(plan.Files))
	}

	fileA := plan.Files[0]
	if !strings.HasSuffix(fileA.Path, "/a.parquet") {
		t.Errorf("file A path = %q", fileA.Path)
	}
	if fileA.Access != nil {
		t.Error("fully live file A must carry no access plan")
	}
	if !scalar.Equals(fileA.PartitionValues[0], scalar.NewStringScalar("eu")) {
		t.Errorf("file A partition value = %v", fileA.PartitionValues[0])
	}

	fileB := plan.Files[1]
	if fileB.Access == nil {
		t.Fatal("file B must carry an access plan")
	}
	groups := fileB.Access.RowGroups
	if len(groups) != 2 {
		t.Fatalf("file B access plan has %d groups, want 2", len(groups))
	}
	if groups[0].Kind != exec.AccessScan {
		t.Errorf("file B group 0 = %v, want scan", groups[0].Kind)
	}
	if groups[1].Kind != exec.AccessSelective {
		t.Fatalf("file B group 1 = %v, want selective", groups[1].Kind)
	}
	if n := groups[1].Selection.NumSelected(); n != 50 {
		t.Errorf("file B group 1 selects %d rows, want 50", n)
	}
	if !scalar.Equals(fileB.PartitionValues[0], scalar.NewStringScalar("us")) {
		t.Errorf("file B partition value = %v", fileB.PartitionValues[0])
	}

	// No filters pushed down means a constant-true predicate.
	if plan.Predicate.Type() != filter.TypeValueConstant {
		t.Errorf("predicate type = %v, want constant", plan.Predicate.Type())
	}
}

func TestScanProjectionAndFilters(t *testing.T) {
	engine, dir := newSalesTable(t)
	ctx := context.Background()
	tbl, err := Open(ctx, engine, dir, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	plan, err := tbl.Scan(ctx, &catalog.ScanOptions{
		Projection: []int{1, 0},
		Filters: []filter.Expression{
			filter.Equal(filter.Column("region"), filter.Literal("eu")),
		},
		Limit: 5,
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	out := plan.OutputSchema()
	if out.NumFields() != 2 || out.Field(0).Name != "region" || out.Field(1).Name != "id" {
		t.Errorf("output schema = %v", out)
	}
	if plan.Limit != 5 {
		t.Errorf("limit = %d, want 5", plan.Limit)
	}
	if plan.Predicate.Type() != filter.TypeCompareEqual {
		t.Errorf("predicate type = %v, want equality", plan.Predicate.Type())
	}
	for _, f := range plan.Files {
		if len(f.PartitionValues) != 1 {
			t.Errorf("file %q has %d partition values, want 1", f.Path, len(f.PartitionValues))
		}
	}
}

func TestScanTimeTravel(t *testing.T) {
	engine, dir := newSalesTable(t)
	ctx := context.Background()
	tbl, err := Open(ctx, engine, dir, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	plan, err := tbl.Scan(ctx, &catalog.ScanOptions{
		TimePoint: &catalog.TimePoint{Unit: "version", Value: "0"},
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(plan.Files) != 1 {
		t.Errorf("version 0 plan has %d files, want 1", len(plan.Files))
	}

	if _, err := tbl.Scan(ctx, &catalog.ScanOptions{
		TimePoint: &catalog.TimePoint{Unit: "timestamp", Value: "2024-01-15"},
	}); err == nil {
		t.Error("Scan() expected error for unsupported time point unit")
	}
	if _, err := tbl.Scan(ctx, &catalog.ScanOptions{
		TimePoint: &catalog.TimePoint{Unit: "version", Value: "7"},
	}); err == nil {
		t.Error("Scan() expected error for missing version")
	}
}

func TestScanVersionOption(t *testing.T) {
	engine, dir := newSalesTable(t)
	ctx := context.Background()
	tbl, err := Open(ctx, engine, dir, map[string]string{OptVersion: "0"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	plan, err := tbl.Scan(ctx, nil)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(plan.Files) != 1 {
		t.Errorf("pinned plan has %d files, want 1", len(plan.Files))
	}

	if _, err := Open(ctx, engine, dir, map[string]string{OptVersion: "abc"}, zerolog.Nop()); err == nil {
		t.Error("Open() expected error for malformed version option")
	}
}

func TestScanPartitionDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	engine := kernel.NewStaticEngine()
	engine.RegisterTable(dir, &kernel.StaticTable{
		Schema: kernel.NewStructType(
			kernel.StructField{Name: "v", Type: kernel.TypeLong},
			kernel.StructField{Name: "p", Type: kernel.TypeLong},
		),
		PartitionColumns: []string{"p"},
		Versions: map[int64][]kernel.StaticFile{
			0: {{Path: "x.parquet", PartitionValues: map[string]string{"p": "not-a-number"}}},
		},
	})
	ctx := context.Background()
	tbl, err := Open(ctx, engine, dir, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := tbl.Scan(ctx, nil); err == nil {
		t.Error("Scan() expected error for malformed partition value")
	}
}

// failingDV always fails to materialize.
type failingDV struct{}

func (failingDV) Materialize(ctx context.Context, tableRoot string) ([]bool, error) {
	return nil, context.DeadlineExceeded
}

type stubScan struct{ files []kernel.FileAdd }

func (s *stubScan) VisitFiles(ctx context.Context, visit kernel.FileVisitor) error {
	for _, f := range s.files {
		visit(f)
	}
	return nil
}

type stubEngine struct {
	snap kernel.Snapshot
	scan kernel.Scan
}

func (e *stubEngine) Snapshot(ctx context.Context, location string, version *int64) (kernel.Snapshot, error) {
	return e.snap, nil
}

func (e *stubEngine) NewScan(ctx context.Context, snapshot kernel.Snapshot, readSchema *kernel.StructType) (kernel.Scan, error) {
	return e.scan, nil
}

type stubSnapshot struct {
	schema *kernel.StructType
	root   string
}

func (s *stubSnapshot) Schema() *kernel.StructType { return s.schema }
func (s *stubSnapshot) PartitionColumns() []string { return nil }
func (s *stubSnapshot) TableRoot() string          { return s.root }
func (s *stubSnapshot) Version() int64             { return 0 }

func TestScanDeletionVectorFailureFailsWhole(t *testing.T) {
	dir := t.TempDir()
	engine := &stubEngine{
		snap: &stubSnapshot{
			schema: kernel.NewStructType(kernel.StructField{Name: "id", Type: kernel.TypeLong}),
			root:   dir + "/",
		},
		scan: &stubScan{files: []kernel.FileAdd{
			{Path: "bad1.parquet", DeletionVector: failingDV{}},
			{Path: "good.parquet"},
			{Path: "bad2.parquet", DeletionVector: failingDV{}},
		}},
	}

	ctx := context.Background()
	tbl, err := Open(ctx, engine, dir, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	_, err = tbl.Scan(ctx, nil)
	if err == nil {
		t.Fatal("Scan() expected error when a deletion vector cannot be materialized")
	}
	// Enumeration continues past the first failure so both files surface.
	if !strings.Contains(err.Error(), "bad1.parquet") || !strings.Contains(err.Error(), "bad2.parquet") {
		t.Errorf("error does not name both failing files: %v", err)
	}
}
