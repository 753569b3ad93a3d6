package ops

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hiel/internal/core"
)

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "data.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath":   path,
		"sheet_name": "Sheet1",
		"start_cell": "A1",
		"data": []any{
			[]any{"name", "score"},
			[]any{"alice", 90},
			[]any{"bob", 85},
		},
	})

	resp := mustDispatch(t, r, "data-read", map[string]any{
		"filepath":   path,
		"sheet_name": "Sheet1",
		"start_cell": "A1",
		"end_cell":   "B3",
	})

	want := [][]string{
		{"name", "score"},
		{"alice", "90"},
		{"bob", "85"},
	}
	got, ok := resp.Data["data"].([][]string)
	if !ok {
		t.Fatalf("data has unexpected type: %T", resp.Data["data"])
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteData_RowCapRejectedBeforeFileAccess(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	r.env.Cfg.Limits.MaxRowsPerCall = 2

	grid := []any{
		[]any{"a"}, []any{"b"}, []any{"c"},
	}
	resp := r.Dispatch(context.Background(), "data-write", map[string]any{
		"filepath": root + "/never-created.xlsx",
		"data":     grid,
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("oversized grid must fail validation, got %+v", resp)
	}
	// 校验先于文件访问：目标文件不应存在
	if _, err := os.Stat(root + "/never-created.xlsx"); !os.IsNotExist(err) {
		t.Fatalf("file must not be touched when the grid is oversized")
	}
}

func TestCellWriteRead(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "cell.xlsx")

	mustDispatch(t, r, "cell-write", map[string]any{
		"filepath": path,
		"cell":     "C3",
		"value":    "hello",
	})
	resp := mustDispatch(t, r, "cell-read", map[string]any{
		"filepath": path,
		"cell":     "C3",
	})
	if resp.Data["value"] != "hello" {
		t.Fatalf("value want=hello got=%v", resp.Data["value"])
	}
}

func TestFindReplace(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "fr.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"foo", "bar"},
			[]any{"foobar", "baz"},
		},
	})

	resp := mustDispatch(t, r, "find-replace", map[string]any{
		"filepath":     path,
		"find_text":    "foo",
		"replace_text": "qux",
	})
	if got := resp.Data["replacements"]; got != 2 {
		t.Fatalf("replacements want=2 got=%v", got)
	}

	check := mustDispatch(t, r, "cell-read", map[string]any{
		"filepath": path,
		"cell":     "A2",
	})
	if check.Data["value"] != "quxbar" {
		t.Fatalf("A2 want=quxbar got=%v", check.Data["value"])
	}
}

func TestFindReplace_MatchEntireCell(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "fr2.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"foo", "foobar"},
		},
	})

	resp := mustDispatch(t, r, "find-replace", map[string]any{
		"filepath":          path,
		"find_text":         "foo",
		"replace_text":      "qux",
		"match_entire_cell": true,
	})
	if got := resp.Data["replacements"]; got != 1 {
		t.Fatalf("replacements want=1 got=%v", got)
	}
}

func TestSortRange(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "sort.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"banana", 3},
			[]any{"apple", 10},
			[]any{"cherry", 2},
		},
	})
	mustDispatch(t, r, "sort-range", map[string]any{
		"filepath": path,
		"range":    "A1:B3",
	})

	resp := mustDispatch(t, r, "data-read", map[string]any{
		"filepath":   path,
		"start_cell": "A1",
		"end_cell":   "B3",
	})
	want := [][]string{
		{"apple", "10"},
		{"banana", "3"},
		{"cherry", "2"},
	}
	if diff := cmp.Diff(want, resp.Data["data"]); diff != "" {
		t.Fatalf("sorted grid mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRange_NumericColumn(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "sortnum.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{10}, []any{2}, []any{33},
		},
	})
	mustDispatch(t, r, "sort-range", map[string]any{
		"filepath": path,
		"range":    "A1:A3",
	})

	resp := mustDispatch(t, r, "data-read", map[string]any{
		"filepath":   path,
		"start_cell": "A1",
		"end_cell":   "A3",
	})
	// 数值列按数值序，不是字典序
	want := [][]string{{"2"}, {"10"}, {"33"}}
	if diff := cmp.Diff(want, resp.Data["data"]); diff != "" {
		t.Fatalf("numeric sort mismatch (-want +got):\n%s", diff)
	}
}
