package ops

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hiel/internal/core"
)

// validationOperators 数据验证运算符映射
var validationOperators = map[string]excelize.DataValidationOperator{
	"between":            excelize.DataValidationOperatorBetween,
	"notBetween":         excelize.DataValidationOperatorNotBetween,
	"equal":              excelize.DataValidationOperatorEqual,
	"notEqual":           excelize.DataValidationOperatorNotEqual,
	"greaterThan":        excelize.DataValidationOperatorGreaterThan,
	"greaterThanOrEqual": excelize.DataValidationOperatorGreaterThanOrEqual,
	"lessThan":           excelize.DataValidationOperatorLessThan,
	"lessThanOrEqual":    excelize.DataValidationOperatorLessThanOrEqual,
}

// boundArg 验证边界参数：数字按 float64 传递，字符串（日期、单元格引用）原样传递
func boundArg(args Args, key string) any {
	if _, ok := args[key].(string); ok {
		return args.String(key, "0")
	}
	return args.Float(key, 0)
}

// addValidation 为区域添加数据验证规则
func addValidation(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	rangeRef := args.String("range", "")
	ruleType := args.String("validation_type", "list")

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

	dv := excelize.NewDataValidation(true)
	dv.Sqref = startCell + ":" + endCell

	switch ruleType {
	case "list":
		options := args.StringSlice("options")
		if len(options) == 0 {
			return nil, core.Validationf("options must list at least one value")
		}
		if err := dv.SetDropList(options); err != nil {
			return nil, core.Validationf("invalid option list: %v", err)
		}
	case "whole", "decimal", "date", "time", "textLength":
		operatorName := args.String("operator", "between")
		operator, ok := validationOperators[operatorName]
		if !ok {
			return nil, core.Validationf("unknown operator: %s", operatorName)
		}
		dvType := map[string]excelize.DataValidationType{
			"whole":      excelize.DataValidationTypeWhole,
			"decimal":    excelize.DataValidationTypeDecimal,
			"date":       excelize.DataValidationTypeDate,
			"time":       excelize.DataValidationTypeTime,
			"textLength": excelize.DataValidationTypeTextLength,
		}[ruleType]
		if err := dv.SetRange(boundArg(args, "minimum"), boundArg(args, "maximum"), dvType, operator); err != nil {
			return nil, core.Validationf("invalid validation bounds: %v", err)
		}
	default:
		return nil, core.Validationf("unknown validation type: %s", ruleType)
	}

	if title := args.String("error_title", ""); title != "" {
		msg := args.String("error_message", "Invalid input")
		dv.SetError(excelize.DataValidationErrorStyleStop, title, msg)
	}
	if title := args.String("prompt_title", ""); title != "" {
		msg := args.String("prompt_message", "")
		dv.SetInput(title, msg)
	}

	if err := f.AddDataValidation(sheet, dv); err != nil {
		return nil, core.Internalf(err, "failed to add data validation")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":         fmt.Sprintf("Data validation added to %s", rangeRef),
		"validation_type": ruleType,
		"warnings":        warns,
	}, nil
}

// addProtection 保护工作表，可选放开指定区域
func addProtection(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	password := args.String("password", "")
	unlockedRanges := args.StringSlice("unlocked_ranges")

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	// 放开的区域在开启保护前标记为未锁定
	for _, ref := range unlockedRanges {
		startCell, endCell, err := splitRange(ref)
		if err != nil {
			return nil, err
		}
		styleID, err := f.NewStyle(&excelize.Style{Protection: &excelize.Protection{Locked: false}})
		if err != nil {
			return nil, core.Internalf(err, "failed to build protection style")
		}
		if err := f.SetCellStyle(sheet, startCell, endCell, styleID); err != nil {
			return nil, core.Internalf(err, "failed to unlock range %s", ref)
		}
	}

	if err := f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
		Password:            password,
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
		FormatCells:         args.Bool("allow_format", false),
		InsertRows:          args.Bool("allow_insert_rows", false),
		DeleteRows:          args.Bool("allow_delete_rows", false),
		Sort:                args.Bool("allow_sort", false),
		AutoFilter:          args.Bool("allow_filter", false),
	}); err != nil {
		return nil, core.Internalf(err, "failed to protect sheet")
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":         fmt.Sprintf("Protection enabled on sheet '%s'", sheet),
		"unlocked_ranges": len(unlockedRanges),
		"warnings":        warns,
	}, nil
}

// createNamedRange 定义命名区域
func createNamedRange(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	name := args.String("range_name", "")
	rangeRef := args.String("range", "")
	if name == "" {
		return nil, core.Validationf("range_name must be a non-empty string")
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	refersTo, err := absRangeRef(sheet, rangeRef)
	if err != nil {
		return nil, err
	}
	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     name,
		RefersTo: refersTo,
		Scope:    "Workbook",
	}); err != nil {
		return nil, core.Validationf("failed to define name %q: %v", name, err)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":    fmt.Sprintf("Named range '%s' created for %s", name, rangeRef),
		"refers_to":  refersTo,
		"warnings":   warns,
	}, nil
}
