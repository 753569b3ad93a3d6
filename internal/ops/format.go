package ops

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// formatRange 基础格式化：加粗 + 填充色
func formatRange(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	startCell := args.String("start_cell", "")
	endCell := args.String("end_cell", "")
	if _, _, err := parseCell(startCell); err != nil {
		return nil, err
	}
	if _, _, err := parseCell(endCell); err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	style := excelize.Style{}
	if args.Bool("bold", false) {
		style.Font = &excelize.Font{Bold: true}
	}
	if color := args.String("fill_color", ""); color != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	styleID, err := f.NewStyle(&style)
	if err != nil {
		return nil, core.Internalf(err, "failed to build style")
	}
	if err := f.SetCellStyle(sheet, startCell, endCell, styleID); err != nil {
		return nil, core.Internalf(err, "failed to apply style to %s:%s", startCell, endCell)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  "Formatting applied",
		"warnings": warns,
	}, nil
}

// buildStyle 把 formatting 对象映射为 excelize 样式
func buildStyle(formatting map[string]any) *excelize.Style {
	style := &excelize.Style{}

	if fontOpts, ok := formatting["font"].(map[string]any); ok {
		font := &excelize.Font{Size: 11}
		if v, ok := fontOpts["name"].(string); ok {
			font.Family = v
		}
		if v, ok := fontOpts["size"].(float64); ok {
			font.Size = v
		}
		if v, ok := fontOpts["bold"].(bool); ok {
			font.Bold = v
		}
		if v, ok := fontOpts["italic"].(bool); ok {
			font.Italic = v
		}
		if v, ok := fontOpts["underline"].(string); ok && v != "none" {
			font.Underline = v
		}
		if v, ok := fontOpts["color"].(string); ok {
			font.Color = v
		}
		style.Font = font
	}

	if fillOpts, ok := formatting["fill"].(map[string]any); ok {
		color := "FFFFFF"
		if v, ok := fillOpts["color"].(string); ok {
			color = v
		}
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	if borderOpts, ok := formatting["border"].(map[string]any); ok {
		borderStyle := 1 // thin
		if v, ok := borderOpts["style"].(string); ok {
			switch v {
			case "medium":
				borderStyle = 2
			case "thick":
				borderStyle = 5
			case "dashed":
				borderStyle = 3
			case "dotted":
				borderStyle = 4
			}
		}
		color := "000000"
		if v, ok := borderOpts["color"].(string); ok {
			color = v
		}
		for _, side := range []string{"left", "right", "top", "bottom"} {
			if enabled, ok := borderOpts[side].(bool); ok && enabled {
				style.Border = append(style.Border, excelize.Border{Type: side, Style: borderStyle, Color: color})
			}
		}
	}

	if alignOpts, ok := formatting["alignment"].(map[string]any); ok {
		align := &excelize.Alignment{}
		if v, ok := alignOpts["horizontal"].(string); ok {
			align.Horizontal = v
		}
		if v, ok := alignOpts["vertical"].(string); ok {
			align.Vertical = v
		}
		if v, ok := alignOpts["wrap_text"].(bool); ok {
			align.WrapText = v
		}
		if v, ok := alignOpts["shrink_to_fit"].(bool); ok {
			align.ShrinkToFit = v
		}
		if v, ok := alignOpts["indent"].(float64); ok {
			align.Indent = int(v)
		}
		style.Alignment = align
	}

	if nf, ok := formatting["number_format"].(string); ok {
		switch nf {
		case "percentage":
			style.NumFmt = 9 // 0%
		case "currency":
			custom := "$#,##0.00"
			style.CustomNumFmt = &custom
		case "date":
			custom := "mm/dd/yyyy"
			style.CustomNumFmt = &custom
		case "time":
			custom := "hh:mm:ss"
			style.CustomNumFmt = &custom
		default:
			custom := nf
			style.CustomNumFmt = &custom
		}
	}

	return style
}

// formatAdvanced 高级格式化：字体/填充/边框/对齐/数字格式
func formatAdvanced(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	rangeRef := args.String("range", "")
	formatting := args.Map("formatting")
	if formatting == nil {
		return nil, core.Validationf("formatting must be an object")
	}

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

	styleID, err := f.NewStyle(buildStyle(formatting))
	if err != nil {
		return nil, core.Internalf(err, "failed to build style")
	}
	if err := f.SetCellStyle(sheet, startCell, endCell, styleID); err != nil {
		return nil, core.Internalf(err, "failed to apply style to %s", rangeRef)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Advanced formatting applied to %s", rangeRef),
		"warnings": warns,
	}, nil
}

// conditionalOperators 条件格式运算符映射（历史命名 → excelize 语义）
var conditionalOperators = map[string]string{
	"greaterThan":        ">",
	"greaterThanOrEqual": ">=",
	"lessThan":           "<",
	"lessThanOrEqual":    "<=",
	"equal":              "==",
	"notEqual":           "!=",
	"between":            "between",
	"notBetween":         "not between",
}

// formatConditional 条件格式
func formatConditional(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	rangeRef := args.String("range", "")
	ruleType := args.String("rule_type", "")
	condition := args.Map("condition")
	format := args.Map("format")

	if _, _, _, _, err := parseRange(rangeRef); err != nil {
		return nil, err
	}
	if condition == nil {
		return nil, core.Validationf("condition must be an object")
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	bgColor := "FFFF00"
	fontColor := "000000"
	bold := false
	if format != nil {
		if v, ok := format["bg_color"].(string); ok {
			bgColor = v
		}
		if v, ok := format["font_color"].(string); ok {
			fontColor = v
		}
		if v, ok := format["bold"].(bool); ok {
			bold = v
		}
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: fontColor, Bold: bold},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{bgColor}},
	})
	if err != nil {
		return nil, core.Internalf(err, "failed to build style")
	}

	var opts excelize.ConditionalFormatOptions
	switch ruleType {
	case "cell_value":
		operator := "greaterThan"
		if v, ok := condition["operator"].(string); ok {
			operator = v
		}
		criteria, ok := conditionalOperators[operator]
		if !ok {
			return nil, core.Validationf("unknown operator: %s", operator)
		}
		opts = excelize.ConditionalFormatOptions{
			Type:     "cell",
			Criteria: criteria,
			Format:   styleID,
			Value:    fmt.Sprintf("%v", condition["value"]),
		}
	case "formula":
		formula, _ := condition["formula"].(string)
		if formula == "" {
			return nil, core.Validationf("condition.formula must be a non-empty string")
		}
		opts = excelize.ConditionalFormatOptions{
			Type:     "formula",
			Criteria: formula,
			Format:   styleID,
		}
	default:
		return nil, core.Validationf("unknown rule type: %s", ruleType)
	}

	if err := f.SetConditionalFormat(sheet, rangeRef, []excelize.ConditionalFormatOptions{opts}); err != nil {
		return nil, core.Internalf(err, "failed to set conditional format on %s", rangeRef)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":   fmt.Sprintf("Conditional formatting applied to %s", rangeRef),
		"rule_type": ruleType,
		"warnings":  warns,
	}, nil
}

// mergeRange 合并单元格
func mergeRange(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	rangeRef := args.String("range", "")
	startCell, endCell, err := splitRange(rangeRef)
	if err != nil {
		return nil, err
	}
	if startCell == endCell {
		return nil, core.Validationf("range %q must span more than one cell", rangeRef)
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	if err := f.MergeCell(sheet, startCell, endCell); err != nil {
		return nil, core.Internalf(err, "failed to merge %s", rangeRef)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Cells merged: %s", rangeRef),
		"warnings": warns,
	}, nil
}

// unmergeRange 取消合并
func unmergeRange(ctx context.Context, env *Env, args Args) (map[string]any, error) {
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
	if err := f.UnmergeCell(sheet, startCell, endCell); err != nil {
		return nil, core.Internalf(err, "failed to unmerge %s", rangeRef)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Cells unmerged: %s", rangeRef),
		"warnings": warns,
	}, nil
}
