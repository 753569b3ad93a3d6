package ops

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// rowColCount 解析 count 参数并做上限校验
func rowColCount(args Args, limit int, unit string) (int, error) {
	count := args.Int("count", 1)
	if count < 1 {
		return 0, core.Validationf("count must be at least 1")
	}
	if count > limit {
		return 0, core.Validationf("count %d exceeds the maximum of %d %s", count, limit, unit)
	}
	return count, nil
}

// insertRows 在指定行前插入若干行
func insertRows(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	startRow := args.Int("start_row", 0)
	if startRow < 1 {
		return nil, core.Validationf("start_row must be at least 1")
	}
	count, err := rowColCount(args, env.Cfg.Limits.MaxRowsPerCall, "rows")
	if err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	if err := f.InsertRows(sheet, startRow, count); err != nil {
		return nil, core.Internalf(err, "failed to insert rows")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Inserted %d row(s) at row %d", count, startRow),
		"warnings": warns,
	}, nil
}

// deleteRows 删除若干行
func deleteRows(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	startRow := args.Int("start_row", 0)
	if startRow < 1 {
		return nil, core.Validationf("start_row must be at least 1")
	}
	count, err := rowColCount(args, env.Cfg.Limits.MaxRowsPerCall, "rows")
	if err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	// 固定从 startRow 删：后续行在每次删除后上移
	for i := 0; i < count; i++ {
		if err := f.RemoveRow(sheet, startRow); err != nil {
			return nil, core.Internalf(err, "failed to delete row %d", startRow+i)
		}
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Deleted %d row(s) starting at row %d", count, startRow),
		"warnings": warns,
	}, nil
}

// insertColumns 在指定列前插入若干列
func insertColumns(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	startCol := args.String("start_column", "")
	colNum, err := excelize.ColumnNameToNumber(startCol)
	if err != nil {
		return nil, core.Validationf("invalid column %q: %v", startCol, err)
	}
	count, err := rowColCount(args, env.Cfg.Limits.MaxColsPerCall, "columns")
	if err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	colName, _ := excelize.ColumnNumberToName(colNum)
	if err := f.InsertCols(sheet, colName, count); err != nil {
		return nil, core.Internalf(err, "failed to insert columns")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Inserted %d column(s) at column %s", count, colName),
		"warnings": warns,
	}, nil
}

// deleteColumns 删除若干列
func deleteColumns(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	startCol := args.String("start_column", "")
	colNum, err := excelize.ColumnNameToNumber(startCol)
	if err != nil {
		return nil, core.Validationf("invalid column %q: %v", startCol, err)
	}
	count, err := rowColCount(args, env.Cfg.Limits.MaxColsPerCall, "columns")
	if err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	colName, _ := excelize.ColumnNumberToName(colNum)
	for i := 0; i < count; i++ {
		if err := f.RemoveCol(sheet, colName); err != nil {
			return nil, core.Internalf(err, "failed to delete column %s", colName)
		}
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Deleted %d column(s) starting at column %s", count, colName),
		"warnings": warns,
	}, nil
}
