package ops

import (
	"context"
	"math"
	"testing"

	"hiel/internal/core"
)

func analysisFixture(t *testing.T, r *Registry, root, name string) string {
	t.Helper()
	path := newWorkbookAt(t, r, root, name)
	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"label", "a", "b"},
			[]any{"x", 1, 2},
			[]any{"y", 2, 4},
			[]any{"z", 3, 6},
		},
	})
	return path
}

func TestAnalyze_Descriptive(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := analysisFixture(t, r, root, "stats.xlsx")

	resp := mustDispatch(t, r, "data-analyze", map[string]any{
		"filepath": path,
		"range":    "A1:C4",
	})
	results, ok := resp.Data["results"].(map[string]any)
	if !ok {
		t.Fatalf("results missing: %+v", resp.Data)
	}

	colA, ok := results["a"].(map[string]any)
	if !ok {
		t.Fatalf("column a not analyzed: %+v", results)
	}
	if colA["count"] != 3 || colA["mean"] != 2.0 || colA["median"] != 2.0 {
		t.Fatalf("column a stats mismatch: %+v", colA)
	}
	if colA["min"] != 1.0 || colA["max"] != 3.0 || colA["range"] != 2.0 {
		t.Fatalf("column a extremes mismatch: %+v", colA)
	}
	if stddev, ok := colA["std_dev"].(float64); !ok || math.Abs(stddev-1.0) > 1e-9 {
		t.Fatalf("column a std_dev want=1 got=%v", colA["std_dev"])
	}

	// 纯文本列没有数值，只报计数为零
	colLabel, ok := results["label"].(map[string]any)
	if !ok || colLabel["count"] != 0 {
		t.Fatalf("text column should report zero numeric values: %+v", colLabel)
	}
}

func TestAnalyze_Correlation(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := analysisFixture(t, r, root, "corr.xlsx")

	resp := mustDispatch(t, r, "data-analyze", map[string]any{
		"filepath":      path,
		"range":         "A1:C4",
		"analysis_type": "correlation",
	})
	results := resp.Data["results"].(map[string]any)
	correlations, ok := results["correlations"].(map[string]any)
	if !ok {
		t.Fatalf("correlations missing: %+v", results)
	}

	// b 恒等于 2a，相关系数应为 1
	pair, ok := correlations["a vs b"].(map[string]any)
	if !ok {
		t.Fatalf("pair 'a vs b' missing: %+v", correlations)
	}
	if got, ok := pair["correlation"].(float64); !ok || math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("correlation want=1 got=%v", pair["correlation"])
	}
	if pair["strength"] != "very strong" {
		t.Fatalf("strength want='very strong' got=%v", pair["strength"])
	}
}

func TestAnalyze_Trend(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := analysisFixture(t, r, root, "trend.xlsx")

	resp := mustDispatch(t, r, "data-analyze", map[string]any{
		"filepath":      path,
		"range":         "A1:C4",
		"analysis_type": "trend",
	})
	results := resp.Data["results"].(map[string]any)
	trends := results["trends"].(map[string]any)
	colB, ok := trends["b"].(map[string]any)
	if !ok {
		t.Fatalf("trend for column b missing: %+v", trends)
	}
	if colB["direction"] != "increasing" {
		t.Fatalf("direction want=increasing got=%v", colB["direction"])
	}
	if colB["total_change"] != 4.0 || colB["average_change"] != 2.0 {
		t.Fatalf("change metrics mismatch: %+v", colB)
	}
}

func TestAnalyze_UnknownTypeRejected(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := analysisFixture(t, r, root, "badkind.xlsx")

	resp := r.Dispatch(context.Background(), "data-analyze", map[string]any{
		"filepath":      path,
		"range":         "A1:C4",
		"analysis_type": "quantum",
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("unknown analysis type must fail validation, got %+v", resp)
	}
}

func TestAnalyze_HeaderOnlyRejected(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "empty.xlsx")

	resp := r.Dispatch(context.Background(), "data-analyze", map[string]any{
		"filepath": path,
		"range":    "A1:A1",
	})
	if resp.Success || resp.ErrorKind != string(core.KindValidation) {
		t.Fatalf("single-row range must fail validation, got %+v", resp)
	}
}
