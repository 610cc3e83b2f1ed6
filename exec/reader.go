package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/aolwas/adt/objectstore"
)

// readBatchSize is the batch size hint for parquet record readers.
const readBatchSize = 64 * 1024

// NewReader executes a scan plan against a store and returns a RecordReader
// over the plan's output schema. Files are read sequentially in plan order;
// access plans, projection, per-file partition literals, and the row limit
// are honored. The pushed-down predicate is NOT evaluated (it is inexact by
// contract).
//
// Caller MUST call Release() on the returned reader.
func NewReader(ctx context.Context, plan *ScanPlan, store objectstore.Store, mem memory.Allocator) (array.RecordReader, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	nFile := plan.FileSchema.NumFields()
	proj := plan.Projection
	if proj == nil {
		proj = make([]int, nFile+len(plan.PartitionFields))
		for i := range proj {
			proj[i] = i
		}
	}

	r := &planReader{
		ctx:       ctx,
		plan:      plan,
		store:     store,
		mem:       mem,
		schema:    plan.OutputSchema(),
		refs:      1,
		remaining: -1,
	}
	if plan.Limit > 0 {
		r.remaining = plan.Limit
	}

	seen := make(map[string]bool)
	for _, idx := range proj {
		if idx < nFile {
			name := plan.FileSchema.Field(idx).Name
			r.outCols = append(r.outCols, outCol{name: name})
			if !seen[name] {
				seen[name] = true
				r.dataNames = append(r.dataNames, name)
			}
		} else {
			pi := idx - nFile
			if pi >= len(plan.PartitionFields) {
				return nil, fmt.Errorf("exec: projection index %d out of range", idx)
			}
			r.outCols = append(r.outCols, outCol{fromPartition: true, partitionIdx: pi})
		}
	}
	return r, nil
}

type outCol struct {
	fromPartition bool
	partitionIdx  int
	name          string
}

type planReader struct {
	ctx    context.Context
	plan   *ScanPlan
	store  objectstore.Store
	mem    memory.Allocator
	schema *arrow.Schema

	outCols   []outCol
	dataNames []string

	refs      int64
	err       error
	cur       arrow.Record
	pending   []arrow.Record
	fileIdx   int
	remaining int64
	done      bool

	curFile *fileState
}

type groupAccess struct {
	idx    int
	access RowGroupAccess
}

type fileState struct {
	obj    objectstore.Object
	rdr    *file.Reader
	fr     *pqarrow.FileReader
	pf     *PartitionedFile
	colIdx []int
	colPos map[string]int
	groups []groupAccess
	next   int
}

// Schema implements array.RecordReader.
func (r *planReader) Schema() *arrow.Schema { return r.schema }

// Record implements array.RecordReader.
func (r *planReader) Record() arrow.Record { return r.cur }

// Err implements array.RecordReader.
func (r *planReader) Err() error { return r.err }

// Retain implements array.RecordReader.
func (r *planReader) Retain() { atomic.AddInt64(&r.refs, 1) }

// Release implements array.RecordReader.
func (r *planReader) Release() {
	if atomic.AddInt64(&r.refs, -1) != 0 {
		return
	}
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}
	for _, rec := range r.pending {
		rec.Release()
	}
	r.pending = nil
	r.closeFile()
}

// Next implements array.RecordReader.
func (r *planReader) Next() bool {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}
	if r.err != nil {
		return false
	}
	for len(r.pending) == 0 && !r.done {
		if err := r.advance(); err != nil {
			r.err = err
			r.closeFile()
			return false
		}
	}
	if len(r.pending) == 0 {
		return false
	}
	r.cur = r.pending[0]
	r.pending = r.pending[1:]
	return true
}

// advance reads from the next pending row group, appending output records.
func (r *planReader) advance() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if r.remaining == 0 {
		r.done = true
		r.closeFile()
		return nil
	}
	if r.curFile == nil {
		if r.fileIdx >= len(r.plan.Files) {
			r.done = true
			return nil
		}
		fs, err := r.openFile(&r.plan.Files[r.fileIdx])
		if err != nil {
			return err
		}
		r.curFile = fs
		r.fileIdx++
	}
	fs := r.curFile
	if fs.next >= len(fs.groups) {
		r.closeFile()
		return nil
	}
	g := fs.groups[fs.next]
	fs.next++
	return r.readGroup(fs, g)
}

func (r *planReader) openFile(pf *PartitionedFile) (*fileState, error) {
	obj, err := r.store.Open(r.ctx, pf.Path)
	if err != nil {
		return nil, err
	}
	rdr, err := file.NewParquetReader(obj)
	if err != nil {
		obj.Close()
		return nil, fmt.Errorf("exec: opening parquet file %q: %w", pf.Path, err)
	}
	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: readBatchSize}, r.mem)
	if err != nil {
		rdr.Close()
		obj.Close()
		return nil, fmt.Errorf("exec: reading arrow schema of %q: %w", pf.Path, err)
	}
	fileSchema, err := fr.Schema()
	if err != nil {
		rdr.Close()
		obj.Close()
		return nil, fmt.Errorf("exec: reading arrow schema of %q: %w", pf.Path, err)
	}

	fs := &fileState{obj: obj, rdr: rdr, fr: fr, pf: pf, colPos: make(map[string]int)}
	want := make(map[string]bool, len(r.dataNames))
	for _, name := range r.dataNames {
		want[name] = true
	}
	for i := 0; i < fileSchema.NumFields(); i++ {
		name := fileSchema.Field(i).Name
		if want[name] {
			fs.colPos[name] = len(fs.colIdx)
			fs.colIdx = append(fs.colIdx, i)
			delete(want, name)
		}
	}
	for name := range want {
		rdr.Close()
		obj.Close()
		return nil, fmt.Errorf("exec: column %q not present in file %q", name, pf.Path)
	}

	for gi := 0; gi < rdr.NumRowGroups(); gi++ {
		acc := RowGroupAccess{Kind: AccessScan}
		if pf.Access != nil && gi < len(pf.Access.RowGroups) {
			acc = pf.Access.RowGroups[gi]
		}
		if acc.Kind == AccessSkip {
			continue
		}
		fs.groups = append(fs.groups, groupAccess{idx: gi, access: acc})
	}
	return fs, nil
}

func (r *planReader) closeFile() {
	if r.curFile == nil {
		return
	}
	r.curFile.rdr.Close()
	r.curFile.obj.Close()
	r.curFile = nil
}

func (r *planReader) readGroup(fs *fileState, g groupAccess) error {
	// Partition-only projections need no column data, just row counts.
	if len(fs.colIdx) == 0 {
		n := fs.rdr.RowGroup(g.idx).NumRows()
		if g.access.Kind == AccessSelective {
			n = g.access.Selection.NumSelected()
		}
		return r.emitVirtual(fs.pf, n)
	}

	rr, err := fs.fr.GetRecordReader(r.ctx, fs.colIdx, []int{g.idx})
	if err != nil {
		return fmt.Errorf("exec: reading row group %d of %q: %w", g.idx, fs.pf.Path, err)
	}
	defer rr.Release()

	var cursor int64
	for rr.Next() {
		rec := rr.Record()
		if g.access.Kind == AccessSelective {
			for _, slice := range sliceBySelection(rec, g.access.Selection, &cursor) {
				err := r.emit(fs, slice)
				slice.Release()
				if err != nil {
					return err
				}
			}
		} else {
			if err := r.emit(fs, rec); err != nil {
				return err
			}
		}
		if r.remaining == 0 {
			break
		}
	}
	// The parquet record reader reports io.EOF once the group is drained;
	// that is clean termination, not a failure.
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// sliceBySelection cuts the live runs overlapping rec out of a row-group
// selection. cursor tracks how many rows of the group earlier records
// already covered; rows beyond the selection's runs are live.
func sliceBySelection(rec arrow.Record, sel RowSelection, cursor *int64) []arrow.Record {
	start := *cursor
	end := start + rec.NumRows()
	*cursor = end

	var out []arrow.Record
	var runStart int64
	for _, run := range sel {
		runEnd := runStart + run.RowCount
		if !run.Skip {
			lo := max(runStart, start)
			hi := min(runEnd, end)
			if lo < hi {
				out = append(out, rec.NewSlice(lo-start, hi-start))
			}
		}
		runStart = runEnd
		if runStart >= end {
			return out
		}
	}
	if runStart < end {
		lo := max(runStart, start)
		out = append(out, rec.NewSlice(lo-start, end-start))
	}
	return out
}

// emit decorates a raw file record with partition columns, applies the
// projection order and the row limit, and queues the result.
func (r *planReader) emit(fs *fileState, rec arrow.Record) error {
	n := rec.NumRows()
	if r.remaining >= 0 && n > r.remaining {
		n = r.remaining
	}
	if n == 0 {
		return nil
	}

	cols := make([]arrow.Array, len(r.outCols))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, oc := range r.outCols {
		if oc.fromPartition {
			arr, err := scalar.MakeArrayFromScalar(fs.pf.PartitionValues[oc.partitionIdx], int(n), r.mem)
			if err != nil {
				return fmt.Errorf("exec: materializing partition value: %w", err)
			}
			cols[i] = arr
			continue
		}
		col := rec.Column(fs.colPos[oc.name])
		if n < rec.NumRows() {
			cols[i] = array.NewSlice(col, 0, n)
		} else {
			col.Retain()
			cols[i] = col
		}
	}

	out := array.NewRecord(r.schema, cols, n)
	r.pending = append(r.pending, out)
	if r.remaining > 0 {
		r.remaining -= n
		if r.remaining == 0 {
			r.done = true
		}
	}
	return nil
}

// emitVirtual queues a record made only of partition columns.
func (r *planReader) emitVirtual(pf *PartitionedFile, n int64) error {
	if r.remaining >= 0 && n > r.remaining {
		n = r.remaining
	}
	if n == 0 {
		return nil
	}
	cols := make([]arrow.Array, len(r.outCols))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, oc := range r.outCols {
		arr, err := scalar.MakeArrayFromScalar(pf.PartitionValues[oc.partitionIdx], int(n), r.mem)
		if err != nil {
			return fmt.Errorf("exec: materializing partition value: %w", err)
		}
		cols[i] = arr
	}
	out := array.NewRecord(r.schema, cols, n)
	r.pending = append(r.pending, out)
	if r.remaining > 0 {
		r.remaining -= n
		if r.remaining == 0 {
			r.done = true
		}
	}
	return nil
}
