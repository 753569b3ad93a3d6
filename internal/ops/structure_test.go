package ops

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

func TestRowsInsertShiftsData(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "rows.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data":     []any{[]any{"first"}, []any{"second"}},
	})
	mustDispatch(t, r, "rows-insert", map[string]any{
		"filepath":  path,
		"start_row": 2,
		"count":     2,
	})

	resp := mustDispatch(t, r, "data-read", map[string]any{
		"filepath":   path,
		"start_cell": "A1",
		"end_cell":   "A4",
	})
	want := [][]string{{"first"}, {""}, {""}, {"second"}}
	if diff := cmp.Diff(want, resp.Data["data"]); diff != "" {
		t.Fatalf("rows not shifted (-want +got):\n%s", diff)
	}
}

func TestRowsDelete(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "rowdel.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data":     []any{[]any{"a"}, []any{"b"}, []any{"c"}},
	})
	mustDispatch(t, r, "rows-delete", map[string]any{
		"filepath":  path,
		"start_row": 1,
		"count":     2,
	})

	resp := mustDispatch(t, r, "cell-read", map[string]any{
		"filepath": path,
		"cell":     "A1",
	})
	if resp.Data["value"] != "c" {
		t.Fatalf("A1 want=c got=%v", resp.Data["value"])
	}
}

func TestColumnsInsertDelete(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "cols.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data":     []any{[]any{"x", "y"}},
	})
	mustDispatch(t, r, "columns-insert", map[string]any{
		"filepath":     path,
		"start_column": "B",
	})

	resp := mustDispatch(t, r, "cell-read", map[string]any{
		"filepath": path,
		"cell":     "C1",
	})
	if resp.Data["value"] != "y" {
		t.Fatalf("C1 want=y got=%v", resp.Data["value"])
	}

	mustDispatch(t, r, "columns-delete", map[string]any{
		"filepath":     path,
		"start_column": "B",
	})
	resp = mustDispatch(t, r, "cell-read", map[string]any{
		"filepath": path,
		"cell":     "B1",
	})
	if resp.Data["value"] != "y" {
		t.Fatalf("B1 want=y got=%v", resp.Data["value"])
	}
}

func TestRowCount_ExceedsLimit(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	r.env.Cfg.Limits.MaxRowsPerCall = 5
	path := newWorkbookAt(t, r, root, "cap.xlsx")

	resp := r.Dispatch(context.Background(), "rows-insert", map[string]any{
		"filepath":  path,
		"start_row": 1,
		"count":     6,
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("oversized count must fail validation, got %+v", resp)
	}
}

func TestMergeUnmerge(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "merge.xlsx")

	mustDispatch(t, r, "range-merge", map[string]any{
		"filepath": path,
		"range":    "A1:B2",
	})
	mustDispatch(t, r, "range-unmerge", map[string]any{
		"filepath": path,
		"range":    "A1:B2",
	})
}

func TestMerge_SingleCellRejected(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "merge1.xlsx")

	resp := r.Dispatch(context.Background(), "range-merge", map[string]any{
		"filepath": path,
		"range":    "A1",
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("single-cell merge must fail validation, got %+v", resp)
	}
}

func TestFormatRange(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "fmt.xlsx")

	mustDispatch(t, r, "format-range", map[string]any{
		"filepath":   path,
		"start_cell": "A1",
		"end_cell":   "B2",
		"bold":       true,
		"fill_color": "FFFF00",
	})
}

func TestFormatConditional_UnknownOperatorRejected(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "cond.xlsx")

	resp := r.Dispatch(context.Background(), "format-conditional", map[string]any{
		"filepath":  path,
		"range":     "A1:A5",
		"rule_type": "cell_value",
		"condition": map[string]any{"operator": "sideways", "value": 3},
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("unknown operator must fail validation, got %+v", resp)
	}
}

func TestTableCreate(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "table.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"name", "score"},
			[]any{"alice", 90},
		},
	})
	mustDispatch(t, r, "table-create", map[string]any{
		"filepath":   path,
		"data_range": "A1:B2",
		"table_name": "Scores",
	})
}

func TestNamedRangeCreate(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "named.xlsx")

	resp := mustDispatch(t, r, "named-range-create", map[string]any{
		"filepath":   path,
		"range_name": "InputBlock",
		"range":      "A1:B5",
	})
	if resp.Data["refers_to"] != "'Sheet1'!$A$1:$B$5" {
		t.Fatalf("refers_to mismatch: %v", resp.Data["refers_to"])
	}
}

func TestValidationAdd_List(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "dv.xlsx")

	mustDispatch(t, r, "validation-add", map[string]any{
		"filepath":        path,
		"range":           "A1:A10",
		"validation_type": "list",
		"options":         []any{"red", "green", "blue"},
	})
}

func TestValidationAdd_EmptyListRejected(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "dv2.xlsx")

	resp := r.Dispatch(context.Background(), "validation-add", map[string]any{
		"filepath":        path,
		"range":           "A1:A10",
		"validation_type": "list",
		"options":         []any{},
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("empty option list must fail validation, got %+v", resp)
	}
}

func TestValidationAdd_NumericBounds(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "dv3.xlsx")

	mustDispatch(t, r, "validation-add", map[string]any{
		"filepath":        path,
		"range":           "B1:B10",
		"validation_type": "whole",
		"operator":        "between",
		"minimum":         5,
		"maximum":         10,
	})

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	dvs, err := f.GetDataValidations("Sheet1")
	if err != nil {
		t.Fatalf("GetDataValidations: %v", err)
	}
	if len(dvs) != 1 {
		t.Fatalf("validations want=1 got=%d", len(dvs))
	}
	// 数字边界不能被丢弃成默认值
	if !strings.Contains(dvs[0].Formula1, "5") || !strings.Contains(dvs[0].Formula2, "10") {
		t.Fatalf("bounds not preserved: f1=%q f2=%q", dvs[0].Formula1, dvs[0].Formula2)
	}
}

func TestChartCreate(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "chart.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"month", "sales"},
			[]any{"Jan", 100},
			[]any{"Feb", 120},
		},
	})
	resp := mustDispatch(t, r, "chart-create", map[string]any{
		"filepath":    path,
		"data_range":  "A1:B3",
		"chart_type":  "line",
		"target_cell": "D1",
		"title":       "Monthly sales",
	})
	if resp.Data["series_count"] != 1 {
		t.Fatalf("series_count want=1 got=%v", resp.Data["series_count"])
	}
}

func TestChartCreate_UnknownTypeRejected(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "chart2.xlsx")

	resp := r.Dispatch(context.Background(), "chart-create", map[string]any{
		"filepath":    path,
		"data_range":  "A1:B3",
		"chart_type":  "hologram",
		"target_cell": "D1",
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("unknown chart type must fail validation, got %+v", resp)
	}
}
