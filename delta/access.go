package delta

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/parquet/file"

	"github.com/aolwas/adt/exec"
	"github.com/aolwas/adt/objectstore"
)

// PlanRowGroupAccess classifies each row group of a file against its
// selection vector: all live rows mean a full scan, all deleted rows mean a
// skip, and mixed groups get a run-length row selector. The selection vector
// covers only rows the log flagged as possibly deleted; positions beyond its
// length are live and the vector is padded accordingly before slicing.
func PlanRowGroupAccess(selection []bool, rowGroupSizes []int64) *exec.AccessPlan {
	var total int64
	for _, n := range rowGroupSizes {
		total += n
	}
	selection = padSelection(selection, total)

	plan := &exec.AccessPlan{RowGroups: make([]exec.RowGroupAccess, 0, len(rowGroupSizes))}
	var start int64
	for _, n := range rowGroupSizes {
		slice := selection[start : start+n]
		start += n

		live := int64(0)
		for _, v := range slice {
			if v {
				live++
			}
		}
		switch live {
		case n:
			plan.RowGroups = append(plan.RowGroups, exec.RowGroupAccess{Kind: exec.AccessScan})
		case 0:
			plan.RowGroups = append(plan.RowGroups, exec.RowGroupAccess{Kind: exec.AccessSkip})
		default:
			plan.RowGroups = append(plan.RowGroups, exec.RowGroupAccess{
				Kind:      exec.AccessSelective,
				Selection: exec.RowSelectionFromMask(slice),
			})
		}
	}
	return plan
}

// padSelection extends a selection vector to n rows, marking the unknown
// tail live.
func padSelection(selection []bool, n int64) []bool {
	if int64(len(selection)) >= n {
		return selection[:n]
	}
	out := make([]bool, n)
	copy(out, selection)
	for i := int64(len(selection)); i < n; i++ {
		out[i] = true
	}
	return out
}

// fetchRowGroupSizes reads a parquet file's footer and returns the row count
// of each row group in order. Only metadata is read.
func fetchRowGroupSizes(ctx context.Context, store objectstore.Store, path string) ([]int64, error) {
	obj, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	rdr, err := file.NewParquetReader(obj)
	if err != nil {
		return nil, fmt.Errorf("delta: reading parquet metadata of %q: %w", path, err)
	}
	defer rdr.Close()

	sizes := make([]int64, rdr.NumRowGroups())
	for i := range sizes {
		sizes[i] = rdr.RowGroup(i).NumRows()
	}
	return sizes, nil
}
