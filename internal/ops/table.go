package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// createTable 把区域定义为 Excel 表格
func createTable(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	dataRange := args.String("data_range", "")
	tableName := args.String("table_name", "")
	styleName := args.String("table_style", "TableStyleMedium9")

	startCell, endCell, err := splitRange(dataRange)
	if err != nil {
		return nil, err
	}
	if tableName != "" {
		if strings.ContainsAny(tableName, " -") {
			return nil, core.Validationf("table name %q must not contain spaces or hyphens", tableName)
		}
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	showStripes := true
	if err := f.AddTable(sheet, &excelize.Table{
		Range:          startCell + ":" + endCell,
		Name:           tableName,
		StyleName:      styleName,
		ShowRowStripes: &showStripes,
	}); err != nil {
		return nil, core.Internalf(err, "failed to create table")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":    fmt.Sprintf("Table created over %s", dataRange),
		"table_name": tableName,
		"warnings":   warns,
	}, nil
}

// pivotSubtotals 聚合函数映射
var pivotSubtotals = map[string]string{
	"sum":     "Sum",
	"count":   "Count",
	"average": "Average",
	"max":     "Max",
	"min":     "Min",
}

// createPivot 创建数据透视表
func createPivot(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	dataRange := args.String("data_range", "")
	targetSheet := args.String("target_sheet", "")
	rowFields := args.StringSlice("rows")
	colFields := args.StringSlice("columns")
	valueFields := args.StringSlice("values")
	aggFunc := args.String("agg_func", "sum")

	if _, _, _, _, err := parseRange(dataRange); err != nil {
		return nil, err
	}
	if len(rowFields) == 0 {
		return nil, core.Validationf("rows must list at least one field")
	}
	if len(valueFields) == 0 {
		return nil, core.Validationf("values must list at least one field")
	}
	subtotal, ok := pivotSubtotals[strings.ToLower(aggFunc)]
	if !ok {
		return nil, core.Validationf("unknown aggregation function: %s", aggFunc)
	}
	if targetSheet == "" {
		targetSheet = sheet + "_pivot"
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	if err := ensureSheet(f, targetSheet); err != nil {
		return nil, err
	}

	opts := excelize.PivotTableOptions{
		DataRange:       fmt.Sprintf("'%s'!%s", sheet, dataRange),
		PivotTableRange: fmt.Sprintf("'%s'!A1:H20", targetSheet),
		RowGrandTotals:  true,
		ColGrandTotals:  true,
	}
	for _, name := range rowFields {
		opts.Rows = append(opts.Rows, excelize.PivotTableField{Data: name})
	}
	for _, name := range colFields {
		opts.Columns = append(opts.Columns, excelize.PivotTableField{Data: name})
	}
	for _, name := range valueFields {
		opts.Data = append(opts.Data, excelize.PivotTableField{
			Data:     name,
			Name:     fmt.Sprintf("%s of %s", subtotal, name),
			Subtotal: subtotal,
		})
	}

	if err := f.AddPivotTable(&opts); err != nil {
		return nil, core.Internalf(err, "failed to create pivot table")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":      fmt.Sprintf("Pivot table created on sheet '%s'", targetSheet),
		"target_sheet": targetSheet,
		"warnings":     warns,
	}, nil
}

// applyFilter 对区域启用自动筛选，可带单列条件
func applyFilter(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	rangeRef := args.String("range", "")
	startCell, endCell, err := splitRange(rangeRef)
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

	var filterOpts []excelize.AutoFilterOptions
	if criteria := args.Map("criteria"); criteria != nil {
		colName, _ := criteria["column"].(string)
		expr, _ := criteria["expression"].(string)
		if colName != "" && expr != "" {
			filterOpts = append(filterOpts, excelize.AutoFilterOptions{Column: colName, Expression: expr})
		}
	}
	if err := f.AutoFilter(sheet, startCell+":"+endCell, filterOpts); err != nil {
		return nil, core.Internalf(err, "failed to apply filter")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Filter applied to %s", rangeRef),
		"warnings": warns,
	}, nil
}
