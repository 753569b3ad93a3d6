package ops

import (
	"context"
	"fmt"
	"strings"

	"hiel/internal/core"
)

// excel 工作表名的非法字符
var invalidSheetChars = []string{"\\", "/", "*", "?", ":", "[", "]"}

// validateSheetName 按 Excel 规则校验工作表名
func validateSheetName(name string) error {
	if name == "" {
		return core.Validationf("sheet_name must be a non-empty string")
	}
	for _, ch := range invalidSheetChars {
		if strings.Contains(name, ch) {
			return core.Validationf("sheet name contains invalid character %q", ch)
		}
	}
	if len([]rune(name)) > 31 {
		return core.Validationf("sheet name cannot exceed 31 characters")
	}
	return nil
}

// createWorksheet 在已有工作簿上新建工作表
func createWorksheet(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "")
	if err := validateSheetName(sheet); err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if sheetExists(f, sheet) {
		return nil, core.Validationf("Worksheet '%s' already exists", sheet)
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, core.Internalf(err, "failed to create worksheet %s", sheet)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Worksheet '%s' created", sheet),
		"warnings": warns,
	}, nil
}

// deleteWorksheet 删除工作表；最后一张工作表不可删除
func deleteWorksheet(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "")

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	if len(f.GetSheetList()) == 1 {
		return nil, core.Validationf("Cannot delete the only worksheet")
	}
	if err := f.DeleteSheet(sheet); err != nil {
		return nil, core.Internalf(err, "failed to delete worksheet %s", sheet)
	}
	remaining := f.GetSheetList()
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":          fmt.Sprintf("Worksheet '%s' deleted", sheet),
		"remaining_sheets": remaining,
		"warnings":         warns,
	}, nil
}

// renameWorksheet 重命名工作表
func renameWorksheet(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "")
	newName := args.String("new_name", "")
	if err := validateSheetName(newName); err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	if sheetExists(f, newName) {
		return nil, core.Validationf("Worksheet '%s' already exists", newName)
	}
	if err := f.SetSheetName(sheet, newName); err != nil {
		return nil, core.Internalf(err, "failed to rename worksheet %s", sheet)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Worksheet '%s' renamed to '%s'", sheet, newName),
		"warnings": warns,
	}, nil
}

// copyWorksheet 复制工作表
func copyWorksheet(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	sheet := args.String("sheet_name", "")
	newName := args.String("new_name", "")
	if err := validateSheetName(newName); err != nil {
		return nil, err
	}

	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}
	if err := requireSheet(f, sheet); err != nil {
		return nil, err
	}
	if sheetExists(f, newName) {
		return nil, core.Validationf("Worksheet '%s' already exists", newName)
	}

	srcIdx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, core.Internalf(err, "failed to locate worksheet %s", sheet)
	}
	dstIdx, err := f.NewSheet(newName)
	if err != nil {
		return nil, core.Internalf(err, "failed to create worksheet %s", newName)
	}
	if err := f.CopySheet(srcIdx, dstIdx); err != nil {
		return nil, core.Internalf(err, "failed to copy worksheet %s", sheet)
	}
	if err := save(env, f, path); err != nil {
		return nil, err
	}

	return map[string]any{
		"message":  fmt.Sprintf("Worksheet '%s' copied to '%s'", sheet, newName),
		"warnings": warns,
	}, nil
}
