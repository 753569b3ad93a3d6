package ops

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"hiel/internal/core"
)

// knownFunctions 常见 Excel 函数名，用于浅层校验
// 不在表内的函数只产生警告，不阻止写入
var knownFunctions = map[string]bool{
	"SUM": true, "AVERAGE": true, "COUNT": true, "COUNTA": true, "COUNTIF": true,
	"COUNTIFS": true, "SUMIF": true, "SUMIFS": true, "MAX": true, "MIN": true,
	"IF": true, "IFS": true, "IFERROR": true, "AND": true, "OR": true, "NOT": true,
	"VLOOKUP": true, "HLOOKUP": true, "INDEX": true, "MATCH": true, "XLOOKUP": true,
	"LEFT": true, "RIGHT": true, "MID": true, "LEN": true, "TRIM": true,
	"CONCATENATE": true, "CONCAT": true, "TEXTJOIN": true, "TEXT": true,
	"UPPER": true, "LOWER": true, "PROPER": true, "SUBSTITUTE": true, "REPLACE": true,
	"TODAY": true, "NOW": true, "DATE": true, "YEAR": true, "MONTH": true, "DAY": true,
	"ROUND": true, "ROUNDUP": true, "ROUNDDOWN": true, "ABS": true, "MOD": true,
	"POWER": true, "SQRT": true, "INT": true, "RAND": true, "RANDBETWEEN": true,
	"AVERAGEIF": true, "AVERAGEIFS": true, "MEDIAN": true, "STDEV": true, "VAR": true,
	"ROW": true, "COLUMN": true, "INDIRECT": true, "OFFSET": true, "CHOOSE": true,
}

var funcNamePattern = regexp.MustCompile(`([A-Z][A-Z0-9.]*)\s*\(`)

// checkFormulaSyntax 浅层公式校验：前导 =、括号配平、函数名识别
// 这里不做任何求值，实际计算委托给表格库或最终用户的 Excel
func checkFormulaSyntax(formula string) (issues []string, warnings []string) {
	trimmed := strings.TrimSpace(formula)
	if trimmed == "" {
		issues = append(issues, "formula is empty")
		return
	}
	if !strings.HasPrefix(trimmed, "=") {
		issues = append(issues, "formula must start with '='")
	}

	depth := 0
	inString := false
	for _, ch := range trimmed {
		switch ch {
		case '"':
			inString = !inString
		case '(':
			if !inString {
				depth++
			}
		case ')':
			if !inString {
				depth--
				if depth < 0 {
					issues = append(issues, "unbalanced parentheses: unexpected ')'")
					return
				}
			}
		}
	}
	if depth != 0 {
		issues = append(issues, "unbalanced parentheses")
	}
	if inString {
		issues = append(issues, "unterminated string literal")
	}

	for _, m := range funcNamePattern.FindAllStringSubmatch(strings.ToUpper(trimmed), -1) {
		name := m[1]
		if !knownFunctions[name] {
			warnings = append(warnings, fmt.Sprintf("unrecognized function name: %s", name))
		}
	}
	return
}

// applyFormula 把公式字符串原样写入单元格
func applyFormula(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "Sheet1")
	cell := args.String("cell", "")
	formula := args.String("formula", "")

	if _, _, err := parseCell(cell); err != nil {
		return nil, err
	}
	issues, warnings := checkFormulaSyntax(formula)
	if len(issues) > 0 {
		return nil, core.Validationf("invalid formula: %s", strings.Join(issues, "; "))
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}

	if err := f.SetCellFormula(sheet, cell, strings.TrimPrefix(strings.TrimSpace(formula), "=")); err != nil {
		return nil, core.Internalf(err, "failed to apply formula to %s", cell)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  "Formula applied successfully",
		"cell":     cell,
		"formula":  formula,
		"warnings": append(warns, warnings...),
	}, nil
}

// validateFormula 只校验不落盘
func validateFormula(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	formula := args.String("formula", "")
	issues, warnings := checkFormulaSyntax(formula)
	return map[string]any{
		"valid":    len(issues) == 0,
		"issues":   issues,
		"warnings": warnings,
		"formula":  formula,
	}, nil
}
