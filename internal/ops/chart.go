package ops

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// chartTypes 图表类型映射
var chartTypes = map[string]excelize.ChartType{
	"column":  excelize.Col,
	"bar":     excelize.Bar,
	"line":    excelize.Line,
	"pie":     excelize.Pie,
	"area":    excelize.Area,
	"scatter": excelize.Scatter,
	"radar":   excelize.Radar,
}

// createChart 按数据区域创建图表：首行为类别名，首列为类别轴
func createChart(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	dataRange := args.String("data_range", "")
	chartKind := args.String("chart_type", "column")
	targetCell := args.String("target_cell", "")
	title := args.String("title", "Chart")

	chartType, ok := chartTypes[chartKind]
	if !ok {
		return nil, core.Validationf("unknown chart type: %s", chartKind)
	}
	c1, r1, c2, r2, err := parseRange(dataRange)
	if err != nil {
		return nil, err
	}
	if _, _, err := parseCell(targetCell); err != nil {
		return nil, err
	}
	if r2 <= r1 || c2 <= c1 {
		return nil, core.Validationf("data range %q must cover at least two rows and two columns", dataRange)
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	// 类别轴取首列（去掉表头行），每个数据列生成一个系列
	catStart, _ := excelize.CoordinatesToCellName(c1, r1+1, true)
	catEnd, _ := excelize.CoordinatesToCellName(c1, r2, true)
	categories := fmt.Sprintf("'%s'!%s:%s", sheet, catStart, catEnd)

	var series []excelize.ChartSeries
	for col := c1 + 1; col <= c2; col++ {
		nameCell, _ := excelize.CoordinatesToCellName(col, r1, true)
		valStart, _ := excelize.CoordinatesToCellName(col, r1+1, true)
		valEnd, _ := excelize.CoordinatesToCellName(col, r2, true)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!%s", sheet, nameCell),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!%s:%s", sheet, valStart, valEnd),
		})
	}

	if err := f.AddChart(sheet, targetCell, &excelize.Chart{
		Type:   chartType,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
	}); err != nil {
		return nil, core.Internalf(err, "failed to add chart")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":      fmt.Sprintf("Chart created at %s", targetCell),
		"chart_type":   chartKind,
		"series_count": len(series),
		"warnings":     warns,
	}, nil
}

// sparklineTypes 迷你图类型映射
var sparklineTypes = map[string]string{
	"line":     "line",
	"column":   "column",
	"win_loss": "win_loss",
}

// addSparkline 在目标单元格添加迷你图
func addSparkline(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	dataRange := args.String("data_range", "")
	location := args.String("location", "")
	kind := args.String("sparkline_type", "line")

	sparkType, ok := sparklineTypes[kind]
	if !ok {
		return nil, core.Validationf("unknown sparkline type: %s", kind)
	}
	if _, _, _, _, err := parseRange(dataRange); err != nil {
		return nil, err
	}
	if _, _, err := parseCell(location); err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	if err := f.AddSparkline(sheet, &excelize.SparklineOptions{
		Location: []string{location},
		Range:    []string{fmt.Sprintf("'%s'!%s", sheet, dataRange)},
		Type:     sparkType,
		Markers:  args.Bool("markers", false),
	}); err != nil {
		return nil, core.Internalf(err, "failed to add sparkline")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Sparkline added at %s", location),
		"warnings": warns,
	}, nil
}
