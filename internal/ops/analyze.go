package ops

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"hiel/internal/core"
)

// numericColumn 一列的数值视图，按行对齐，非数值单元格标记缺失
type numericColumn struct {
	name  string
	cells []float64
	ok    []bool
}

func (c numericColumn) values() []float64 {
	out := make([]float64, 0, len(c.cells))
	for i, v := range c.cells {
		if c.ok[i] {
			out = append(out, v)
		}
	}
	return out
}

// analyzeData 区域统计分析
// 第一行视为表头，数据行中无法解析为数值的单元格跳过
func analyzeData(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	rangeRef := args.String("range", "")
	kind := args.String("analysis_type", "descriptive")

	startCol, startRow, endCol, endRow, err := parseRange(rangeRef)
	if err != nil {
		return nil, err
	}

	f, _, warns, err := openExisting(env, args)
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
	if len(data) < 2 {
		return nil, core.Validationf("analysis needs a header row and at least one data row")
	}

	headers := data[0]
	body := data[1:]
	columns := numericColumns(headers, body)

	var results map[string]any
	switch kind {
	case "descriptive":
		results = describeColumns(columns)
	case "correlation":
		results = correlateColumns(columns)
	case "trend":
		results = columnTrends(columns)
	default:
		return nil, core.Validationf("unknown analysis type: %s (expected descriptive, correlation or trend)", kind)
	}

	return map[string]any{
		"message":       fmt.Sprintf("Data analysis completed using %s method", kind),
		"analysis_type": kind,
		"rows_analyzed": len(body),
		"columns":       len(headers),
		"results":       results,
		"warnings":      warns,
	}, nil
}

func numericColumns(headers []string, body [][]string) []numericColumn {
	cols := make([]numericColumn, len(headers))
	for i, header := range headers {
		name := header
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		cols[i] = numericColumn{
			name:  name,
			cells: make([]float64, len(body)),
			ok:    make([]bool, len(body)),
		}
		for r, row := range body {
			if i >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			cols[i].cells[r] = v
			cols[i].ok[r] = true
		}
	}
	return cols
}

// describeColumns 每列的描述统计：计数、均值、中位数、极值、极差
// 样本量大于 1 时补充样本方差和标准差
func describeColumns(cols []numericColumn) map[string]any {
	out := make(map[string]any, len(cols))
	for _, col := range cols {
		vals := col.values()
		if len(vals) == 0 {
			out[col.name] = map[string]any{"count": 0, "note": "No numeric data found"}
			continue
		}
		minV, maxV, sum := vals[0], vals[0], 0.0
		for _, v := range vals {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
			sum += v
		}
		mean := sum / float64(len(vals))
		stats := map[string]any{
			"count":  len(vals),
			"mean":   mean,
			"median": median(vals),
			"min":    minV,
			"max":    maxV,
			"range":  maxV - minV,
		}
		if len(vals) > 1 {
			variance := sampleVariance(vals, mean)
			stats["variance"] = variance
			stats["std_dev"] = math.Sqrt(variance)
		}
		out[col.name] = stats
	}
	return out
}

// correlateColumns 数值列两两的皮尔逊相关系数，只取两列同时有值的行
func correlateColumns(cols []numericColumn) map[string]any {
	numeric := make([]numericColumn, 0, len(cols))
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		if len(col.values()) >= 2 {
			numeric = append(numeric, col)
			names = append(names, col.name)
		}
	}

	correlations := make(map[string]any)
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			var xs, ys []float64
			for r := range numeric[i].cells {
				if numeric[i].ok[r] && numeric[j].ok[r] {
					xs = append(xs, numeric[i].cells[r])
					ys = append(ys, numeric[j].cells[r])
				}
			}
			key := fmt.Sprintf("%s vs %s", numeric[i].name, numeric[j].name)
			if len(xs) < 2 {
				continue
			}
			r, defined := pearson(xs, ys)
			if !defined {
				correlations[key] = map[string]any{
					"correlation": nil,
					"note":        "Unable to calculate correlation",
				}
				continue
			}
			correlations[key] = map[string]any{
				"correlation": r,
				"sample_size": len(xs),
				"strength":    correlationStrength(r),
			}
		}
	}
	return map[string]any{
		"numeric_columns": names,
		"correlations":    correlations,
	}
}

// columnTrends 按行序的趋势指标：起止值、总变化、平均步长、方向、波动度
func columnTrends(cols []numericColumn) map[string]any {
	trends := make(map[string]any)
	for _, col := range cols {
		vals := col.values()
		if len(vals) < 3 {
			continue
		}
		diffs := make([]float64, 0, len(vals)-1)
		sum := 0.0
		for i := 1; i < len(vals); i++ {
			d := vals[i] - vals[i-1]
			diffs = append(diffs, d)
			sum += d
		}
		direction := "stable"
		switch {
		case vals[len(vals)-1] > vals[0]:
			direction = "increasing"
		case vals[len(vals)-1] < vals[0]:
			direction = "decreasing"
		}
		info := map[string]any{
			"data_points":    len(vals),
			"start_value":    vals[0],
			"end_value":      vals[len(vals)-1],
			"total_change":   vals[len(vals)-1] - vals[0],
			"average_change": sum / float64(len(diffs)),
			"direction":      direction,
		}
		if len(diffs) > 1 {
			mean := sum / float64(len(diffs))
			info["volatility"] = math.Sqrt(sampleVariance(diffs, mean))
		}
		trends[col.name] = info
	}
	return map[string]any{"trends": trends}
}

func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func sampleVariance(vals []float64, mean float64) float64 {
	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vals)-1)
}

// pearson 皮尔逊相关系数；任一侧方差为零时不定义
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

func correlationStrength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= 0.8:
		return "very strong"
	case abs >= 0.6:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	case abs >= 0.2:
		return "weak"
	default:
		return "very weak"
	}
}
