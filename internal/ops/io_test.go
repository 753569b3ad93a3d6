package ops

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestImportCSV(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)

	csvPath := filepath.Join(root, "input.csv")
	if err := os.WriteFile(csvPath, []byte("name,score\nalice,90\nbob,85\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	path := filepath.Join(root, "imported.xlsx")

	resp := mustDispatch(t, r, "io-import-csv", map[string]any{
		"filepath": path,
		"csv_path": csvPath,
	})
	if resp.Data["rows_imported"] != 3 {
		t.Fatalf("rows_imported want=3 got=%v", resp.Data["rows_imported"])
	}

	read := mustDispatch(t, r, "data-read", map[string]any{
		"filepath":   path,
		"start_cell": "A1",
		"end_cell":   "B3",
	})
	want := [][]string{
		{"name", "score"},
		{"alice", "90"},
		{"bob", "85"},
	}
	if diff := cmp.Diff(want, read.Data["data"]); diff != "" {
		t.Fatalf("imported grid mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "export.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"a", "b"},
			[]any{1, 2},
		},
	})

	outPath := filepath.Join(root, "out.csv")
	mustDispatch(t, r, "io-export-csv", map[string]any{
		"filepath":    path,
		"output_path": outPath,
	})

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.TrimSpace(string(raw)); got != "a,b\n1,2" {
		t.Fatalf("csv content mismatch: %q", got)
	}
}

func TestExportJSON_FirstRowAsKeys(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "json.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data": []any{
			[]any{"name", "score"},
			[]any{"alice", 90},
		},
	})

	outPath := filepath.Join(root, "out.json")
	mustDispatch(t, r, "io-export-json", map[string]any{
		"filepath":    path,
		"output_path": outPath,
	})

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var records []map[string]string
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []map[string]string{{"name": "alice", "score": "90"}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestExportHTML_EscapesContent(t *testing.T) {
	t.Parallel()
	r, root := newTestRegistry(t)
	path := newWorkbookAt(t, r, root, "html.xlsx")

	mustDispatch(t, r, "data-write", map[string]any{
		"filepath": path,
		"data":     []any{[]any{"<script>alert(1)</script>"}},
	})

	outPath := filepath.Join(root, "out.html")
	mustDispatch(t, r, "io-export-html", map[string]any{
		"filepath":    path,
		"output_path": outPath,
	})

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(raw)
	if strings.Contains(content, "<script>") {
		t.Fatalf("cell content must be escaped")
	}
	if !strings.Contains(content, "&lt;script&gt;") {
		t.Fatalf("escaped content missing from output")
	}
}
