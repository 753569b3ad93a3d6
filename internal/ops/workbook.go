package ops

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// createWorkbook 新建空工作簿并落盘
func createWorkbook(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	path, warns, err := env.Sandbox.Validate(args.String("filepath", ""), true)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := save(env, f, path); err != nil {
		return nil, err
	}
	// 保存后句柄仍然新鲜，直接放回缓存供后续操作命中
	env.Cache.Put(path, f)

	return map[string]any{
		"message":  fmt.Sprintf("Workbook created at %s", path),
		"filepath": path,
		"warnings": warns,
	}, nil
}

// workbookMetadata 读取工作簿元信息：工作表清单及各自的尺寸
func workbookMetadata(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	f, path, warns, err := openExisting(env, args)
	if err != nil {
		return nil, err
	}

	sheets := f.GetSheetList()
	worksheets := make([]map[string]any, 0, len(sheets))
	for _, name := range sheets {
		info := map[string]any{"name": name}
		rows, err := f.GetRows(name)
		if err == nil {
			maxRow, maxCol := usedRange(rows)
			info["max_row"] = maxRow
			info["max_column"] = maxCol
		}
		if dim, err := f.GetSheetDimension(name); err == nil {
			info["dimensions"] = dim
		}
		worksheets = append(worksheets, info)
	}

	return map[string]any{
		"filepath":     path,
		"worksheets":   worksheets,
		"total_sheets": len(sheets),
		"warnings":     warns,
	}, nil
}

// serverStatus 服务器状态：版本、操作数、缓存统计、历史聚合
func (r *Registry) serverStatus(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	data := map[string]any{
		"server":           "hiel",
		"version":          Version,
		"status":           "running",
		"total_operations": len(r.names),
		"cache":            env.Cache.Stats(),
		"lock_table_size":  env.Locks.Len(),
		"allowed_roots":    env.Sandbox.Roots(),
	}
	if env.History != nil {
		if totals, err := env.History.Aggregate(); err == nil {
			data["history"] = totals
		}
	}
	return data, nil
}

// Version 服务器版本号
const Version = "1.0.0"
