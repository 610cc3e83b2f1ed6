package delta

import (
	"reflect"
	"testing"

	"github.com/aolwas/adt/exec"
)

func repeat(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestPlanRowGroupAccessAllLive(t *testing.T) {
	plan := PlanRowGroupAccess(repeat(true, 300), []int64{100, 100, 100})
	for i, g := range plan.RowGroups {
		if g.Kind != exec.AccessScan {
			t.Errorf("group %d = %v, want scan", i, g.Kind)
		}
	}
}

func TestPlanRowGroupAccessAllDeleted(t *testing.T) {
	plan := PlanRowGroupAccess(repeat(false, 200), []int64{100, 100})
	for i, g := range plan.RowGroups {
		if g.Kind != exec.AccessSkip {
			t.Errorf("group %d = %v, want skip", i, g.Kind)
		}
	}
}

func TestPlanRowGroupAccessMixed(t *testing.T) {
	plan := PlanRowGroupAccess([]bool{true, true, true, false, true}, []int64{5})
	if len(plan.RowGroups) != 1 {
		t.Fatalf("got %d groups, want 1", len(plan.RowGroups))
	}
	g := plan.RowGroups[0]
	if g.Kind != exec.AccessSelective {
		t.Fatalf("kind = %v, want selective", g.Kind)
	}
	want := exec.RowSelection{exec.SelectRows(3), exec.SkipRows(1), exec.SelectRows(1)}
	if !reflect.DeepEqual(g.Selection, want) {
		t.Errorf("selection = %v, want %v", g.Selection, want)
	}
}

func TestPlanRowGroupAccessPerGroupDecisions(t *testing.T) {
	// Rows 150-199 deleted over two groups of 100 rows each.
	sel := repeat(true, 150)
	sel = append(sel, repeat(false, 50)...)
	plan := PlanRowGroupAccess(sel, []int64{100, 100})
	if len(plan.RowGroups) != 2 {
		t.Fatalf("got %d groups, want 2", len(plan.RowGroups))
	}
	if plan.RowGroups[0].Kind != exec.AccessScan {
		t.Errorf("group 0 = %v, want scan", plan.RowGroups[0].Kind)
	}
	g1 := plan.RowGroups[1]
	if g1.Kind != exec.AccessSelective {
		t.Fatalf("group 1 = %v, want selective", g1.Kind)
	}
	want := exec.RowSelection{exec.SelectRows(50), exec.SkipRows(50)}
	if !reflect.DeepEqual(g1.Selection, want) {
		t.Errorf("group 1 selection = %v, want %v", g1.Selection, want)
	}
}

func TestPlanRowGroupAccessShortVectorPadsLive(t *testing.T) {
	// The vector only covers the first two rows; everything past it is live.
	plan := PlanRowGroupAccess([]bool{false, true}, []int64{4, 4})
	if len(plan.RowGroups) != 2 {
		t.Fatalf("got %d groups, want 2", len(plan.RowGroups))
	}
	g0 := plan.RowGroups[0]
	if g0.Kind != exec.AccessSelective {
		t.Fatalf("group 0 = %v, want selective", g0.Kind)
	}
	want := exec.RowSelection{exec.SkipRows(1), exec.SelectRows(3)}
	if !reflect.DeepEqual(g0.Selection, want) {
		t.Errorf("group 0 selection = %v, want %v", g0.Selection, want)
	}
	if plan.RowGroups[1].Kind != exec.AccessScan {
		t.Errorf("group 1 = %v, want scan", plan.RowGroups[1].Kind)
	}
}

func TestPadSelection(t *testing.T) {
	got := padSelection([]bool{false}, 3)
	if !reflect.DeepEqual(got, []bool{false, true, true}) {
		t.Errorf("padSelection() = %v", got)
	}
	// Longer vectors are truncated to the file's row count.
	got = padSelection([]bool{true, false, true}, 2)
	if !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("padSelection() = %v", got)
	}
}
