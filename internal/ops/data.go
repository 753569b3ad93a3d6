package ops

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// writeData 写入二维数组数据
// 行列数超出配置上限时在触碰文件之前就拒绝
func writeData(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	grid, err := args.Grid("data")
	if err != nil {
		return nil, err
	}
	if len(grid) > env.Cfg.Limits.MaxRowsPerCall {
		return nil, core.Validationf("too many rows: %d (max: %d)", len(grid), env.Cfg.Limits.MaxRowsPerCall)
	}
	for _, row := range grid {
		if len(row) > env.Cfg.Limits.MaxColsPerCall {
			return nil, core.Validationf("too many columns: %d (max: %d)", len(row), env.Cfg.Limits.MaxColsPerCall)
		}
	}

	sheet := args.String("sheet_name", "Sheet1")
	startCell := args.String("start_cell", "A1")
	startCol, startRow, err := parseCell(startCell)
	if err != nil {
		return nil, err
	}

	// 目标文件不存在时创建新工作簿（与历史行为一致）
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

	maxCols := 0
	for i, row := range grid {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(startCol, startRow+i)
		if err != nil {
			return nil, core.Internalf(err, "invalid coordinates")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, core.Internalf(err, "failed to write row %d", startRow+i)
		}
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"rows_written": len(grid),
		"cols_written": maxCols,
		"sheet_name":   sheet,
		"warnings":     warns,
	}, nil
}

// readData 读取区域数据
// 未给出 end_cell 时从起始单元格读到已用区域边界，受行列上限约束
func readData(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	startCell := args.String("start_cell", "A1")
	endCell := args.String("end_cell", "")

	f, _, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	startCol, startRow, err := parseCell(startCell)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.Internalf(err, "failed to read sheet %s", sheet)
	}

	var endCol, endRow int
	if endCell != "" {
		endCol, endRow, err = parseCell(endCell)
		if err != nil {
			return nil, err
		}
		if endCol < startCol || endRow < startRow {
			return nil, core.Validationf("end_cell %s precedes start_cell %s", endCell, startCell)
		}
	} else {
		maxRow, maxCol := usedRange(rows)
		endRow, endCol = maxRow, maxCol
		if endRow < startRow || endCol < startCol {
			return map[string]any{
				"data": [][]string{}, "rows_read": 0, "cols_read": 0, "warnings": warns,
			}, nil
		}
	}

	// 行列上限封顶
	if endRow-startRow+1 > env.Cfg.Limits.MaxRowsPerCall {
		endRow = startRow + env.Cfg.Limits.MaxRowsPerCall - 1
	}
	if endCol-startCol+1 > env.Cfg.Limits.MaxColsPerCall {
		endCol = startCol + env.Cfg.Limits.MaxColsPerCall - 1
	}

	data := make([][]string, 0, endRow-startRow+1)
	for r := startRow; r <= endRow; r++ {
		rowOut := make([]string, 0, endCol-startCol+1)
		for c := startCol; c <= endCol; c++ {
			var value string
			if r-1 < len(rows) && c-1 < len(rows[r-1]) {
				value = rows[r-1][c-1]
			}
			rowOut = append(rowOut, value)
		}
		data = append(data, rowOut)
	}

	cols := 0
	if len(data) > 0 {
		cols = len(data[0])
	}
	return map[string]any{
		"data":      data,
		"rows_read": len(data),
		"cols_read": cols,
		"warnings":  warns,
	}, nil
}

// writeCell 写单个单元格，复用区域写入
func writeCell(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sub := Args{
		"filepath":   args["filepath"],
		"sheet_name": args.String("sheet_name", "Sheet1"),
		"data":       []any{[]any{args["value"]}},
		"start_cell": args.String("cell", "A1"),
	}
	return writeData(ctx, env, sub)
}

// readCell 读单个单元格
func readCell(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	cell := args.String("cell", "")
	if _, _, err := parseCell(cell); err != nil {
		return nil, err
	}

	f, _, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	value, err := f.GetCellValue(sheet, cell)
	if err != nil {
		return nil, core.Internalf(err, "failed to read cell %s", cell)
	}
	return map[string]any{
		"cell":     cell,
		"value":    value,
		"warnings": warns,
	}, nil
}

// findReplace 区域内查找替换
func findReplace(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	findText := args.String("find_text", "")
	replaceText := args.String("replace_text", "")
	rangeRef := args.String("range", "")
	matchCase := args.Bool("match_case", false)
	matchEntire := args.Bool("match_entire_cell", false)

	if findText == "" {
		return nil, core.Validationf("find_text must be a non-empty string")
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.Internalf(err, "failed to read sheet %s", sheet)
	}

	startCol, startRow := 1, 1
	maxRow, maxCol := usedRange(rows)
	endRow, endCol := maxRow, maxCol
	if rangeRef != "" {
		startCol, startRow, endCol, endRow, err = parseRange(rangeRef)
		if err != nil {
			return nil, err
		}
	}

	count := 0
	for r := startRow; r <= endRow && r-1 < len(rows); r++ {
		for c := startCol; c <= endCol && c-1 < len(rows[r-1]); c++ {
			value := rows[r-1][c-1]
			if value == "" {
				continue
			}
			replaced, changed := replaceInCell(value, findText, replaceText, matchCase, matchEntire)
			if !changed {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, core.Internalf(err, "invalid coordinates")
			}
			if err := f.SetCellValue(sheet, cell, replaced); err != nil {
				return nil, core.Internalf(err, "failed to write cell %s", cell)
			}
			count++
		}
	}

	if count > 0 {
		if err := save(env, f, path); err != nil {
			return nil, err
		}
	}

	return map[string]any{
		"message":      fmt.Sprintf("Replaced %d occurrences", count),
		"replacements": count,
		"find_text":    findText,
		"replace_text": replaceText,
		"warnings":     warns,
	}, nil
}

// replaceInCell 单元格内替换，支持忽略大小写和整格匹配
func replaceInCell(value, find, replace string, matchCase, matchEntire bool) (string, bool) {
	if matchEntire {
		if matchCase {
			if value == find {
				return replace, true
			}
			return value, false
		}
		if strings.EqualFold(value, find) {
			return replace, true
		}
		return value, false
	}

	if matchCase {
		if !strings.Contains(value, find) {
			return value, false
		}
		return strings.ReplaceAll(value, find, replace), true
	}
	return replaceFold(value, find, replace)
}

// replaceFold 忽略大小写的子串替换
func replaceFold(value, find, replace string) (string, bool) {
	lowerValue := strings.ToLower(value)
	lowerFind := strings.ToLower(find)
	if !strings.Contains(lowerValue, lowerFind) {
		return value, false
	}

	var b strings.Builder
	for {
		idx := strings.Index(lowerValue, lowerFind)
		if idx < 0 {
			b.WriteString(value)
			break
		}
		b.WriteString(value[:idx])
		b.WriteString(replace)
		value = value[idx+len(find):]
		lowerValue = lowerValue[idx+len(lowerFind):]
	}
	return b.String(), true
}

// sortRange 按列排序区域
// 多关键字按 sort_by 逆序逐次稳定排序，数值感知比较
func sortRange(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	rangeRef := args.String("range", "")
	sortBy := args.MapSlice("sort_by")
	defaultAsc := args.Bool("ascending", true)

	startCol, startRow, endCol, endRow, err := parseRange(rangeRef)
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

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.Internalf(err, "failed to read sheet %s", sheet)
	}

	// 取出区域数据
	data := make([][]string, 0, endRow-startRow+1)
	for r := startRow; r <= endRow; r++ {
		row := make([]string, 0, endCol-startCol+1)
		for c := startCol; c <= endCol; c++ {
			var value string
			if r-1 < len(rows) && c-1 < len(rows[r-1]) {
				value = rows[r-1][c-1]
			}
			row = append(row, value)
		}
		data = append(data, row)
	}

	keys := sortBy
	if len(keys) == 0 {
		keys = []map[string]any{{"column": float64(0), "ascending": defaultAsc}}
	}
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		colIdx := 0
		if v, ok := key["column"].(float64); ok {
			colIdx = int(v)
		}
		asc := defaultAsc
		if v, ok := key["ascending"].(bool); ok {
			asc = v
		}
		if colIdx < 0 || colIdx >= endCol-startCol+1 {
			return nil, core.Validationf("sort column %d out of range", colIdx)
		}
		sort.SliceStable(data, func(a, b int) bool {
			less := compareCells(data[a][colIdx], data[b][colIdx])
			if asc {
				return less < 0
			}
			return less > 0
		})
	}

	// 写回
	for i, row := range data {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(startCol+j, startRow+i)
			if err != nil {
				return nil, core.Internalf(err, "invalid coordinates")
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, core.Internalf(err, "failed to write cell %s", cell)
			}
		}
	}

	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Range %s sorted", rangeRef),
		"warnings": warns,
	}, nil
}

// compareCells 数值感知比较：两边都是数字时按数值，否则按字符串
func compareCells(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
