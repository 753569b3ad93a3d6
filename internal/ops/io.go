package ops

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// importCSV 把 CSV 文件内容写入工作表
func importCSV(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	csvPath, csvWarns, err := env.Sandbox.Validate(args.String("csv_path", ""), false)
	if err != nil {
		return nil, err
	}
	sheet := args.String("sheet_name", "Sheet1")
	startCell := args.String("start_cell", "A1")
	startCol, startRow, err := parseCell(startCell)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		return nil, core.FileSystemf(err, "failed to read CSV file: %s", csvPath)
	}
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, core.Validationf("failed to parse CSV: %v", err)
	}
	if len(records) > env.Cfg.Limits.MaxRowsPerCall {
		return nil, core.Validationf("too many rows: %d (max: %d)", len(records), env.Cfg.Limits.MaxRowsPerCall)
	}

	path, warns, err := env.Sandbox.Validate(args.String("filepath", ""), true)
	if err != nil {
		return nil, err
	}
	f, err := env.Cache.GetOrLoad(path, true)
	if err != nil {
		return nil, err
	}
	if err := ensureSheet(f, sheet); err != nil {
		return nil, err
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(startCol, startRow+i)
		if err != nil {
			return nil, core.Internalf(err, "invalid coordinates")
		}
		row := make([]any, len(record))
		for j, field := range record {
			row[j] = field
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, core.Internalf(err, "failed to write row %d", startRow+i)
		}
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":       fmt.Sprintf("Imported %d rows from %s", len(records), filepath.Base(csvPath)),
		"rows_imported": len(records),
		"warnings":      append(warns, csvWarns...),
	}, nil
}

// sheetRows 读取工作表已用区域
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.Internalf(err, "failed to read sheet %s", sheet)
	}
	return rows, nil
}

// writeAtomic 原子写出导出文件
func writeAtomic(outPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return core.FileSystemf(err, "failed to create output directory")
	}
	if err := atomic.WriteFile(outPath, bytes.NewReader(data)); err != nil {
		return core.FileSystemf(err, "failed to write %s", outPath)
	}
	return nil
}

// exportCSV 把工作表导出为 CSV 文件
func exportCSV(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	outPath, outWarns, err := env.Sandbox.ValidateExport(args.String("output_path", ""))
	if err != nil {
		return nil, err
	}

	f, _, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, core.Internalf(err, "failed to encode CSV")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, core.Internalf(err, "failed to encode CSV")
	}
	if err := writeAtomic(outPath, buf.Bytes()); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":       fmt.Sprintf("Exported %d rows to %s", len(rows), filepath.Base(outPath)),
		"rows_exported": len(rows),
		"output_path":   outPath,
		"warnings":      append(warns, outWarns...),
	}, nil
}

// exportJSON 把工作表导出为 JSON：首行作为字段名
func exportJSON(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	outPath, outWarns, err := env.Sandbox.ValidateExport(args.String("output_path", ""))
	if err != nil {
		return nil, err
	}

	f, _, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.Validationf("sheet '%s' has no data to export", sheet)
	}

	headers := rows[0]
	objects := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		obj := make(map[string]string, len(headers))
		for i, name := range headers {
			if name == "" {
				name = fmt.Sprintf("column_%d", i+1)
			}
			if i < len(row) {
				obj[name] = row[i]
			} else {
				obj[name] = ""
			}
		}
		objects = append(objects, obj)
	}

	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return nil, core.Internalf(err, "failed to encode JSON")
	}
	if err := writeAtomic(outPath, data); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":          fmt.Sprintf("Exported %d records to %s", len(objects), filepath.Base(outPath)),
		"records_exported": len(objects),
		"output_path":      outPath,
		"warnings":         append(warns, outWarns...),
	}, nil
}

// exportHTML 把工作表导出为 HTML 表格：首行作为表头
func exportHTML(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	outPath, outWarns, err := env.Sandbox.ValidateExport(args.String("output_path", ""))
	if err != nil {
		return nil, err
	}

	f, _, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(sheet)))
	sb.WriteString("<style>table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	sb.WriteString("</head>\n<body>\n<table>\n")
	for i, row := range rows {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<" + tag + ">" + html.EscapeString(cell) + "</" + tag + ">")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</table>\n</body>\n</html>\n")

	if err := writeAtomic(outPath, []byte(sb.String())); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":       fmt.Sprintf("Exported %d rows to %s", len(rows), filepath.Base(outPath)),
		"rows_exported": len(rows),
		"output_path":   outPath,
		"warnings":      append(warns, outWarns...),
	}, nil
}
