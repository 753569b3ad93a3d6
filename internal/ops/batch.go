package ops

import (
	"context"
	"fmt"

	"hiel/internal/core"
)

// batchExecute 顺序执行一组操作
// 单个操作失败不会中断后续执行，每项的结果都会返回
func (r *Registry) batchExecute(ctx context.Context, env *Env, args Args) (map[string]any, error) {
	items := args.MapSlice("operations")
	if len(items) == 0 {
		return nil, core.Validationf("operations must be a non-empty array")
	}

	results := make([]map[string]any, 0, len(items))
	successful := 0
	for i, item := range items {
		name, _ := item["operation"].(string)
		if name == "" {
			results = append(results, map[string]any{
				"index":      i,
				"operation":  "",
				"success":    false,
				"error":      "each batch item needs an 'operation' field",
				"error_kind": string(core.KindValidation),
			})
			continue
		}
		opArgs, _ := item["args"].(map[string]any)
		if opArgs == nil {
			opArgs = map[string]any{}
		}

		resp := r.dispatch(ctx, name, opArgs, false)
		entry := map[string]any{
			"index":     i,
			"operation": name,
			"success":   resp.Success,
		}
		if resp.Success {
			successful++
			entry["message"] = resp.Message
			if len(resp.Data) > 0 {
				entry["data"] = resp.Data
			}
		} else {
			entry["error"] = resp.Error
			entry["error_kind"] = resp.ErrorKind
		}
		results = append(results, entry)

		// 整体取消后不再继续执行剩余项
		if ctx.Err() != nil {
			break
		}
	}

	failed := len(results) - successful
	return map[string]any{
		"message":    fmt.Sprintf("Batch complete: %d succeeded, %d failed", successful, failed),
		"total":      len(items),
		"successful": successful,
		"failed":     failed,
		"results":    results,
	}, nil
}
