package ops

import (
	"hiel/internal/core"
)

// Args 请求参数，JSON 解码后的异构映射
type Args map[string]any

// String 读取字符串参数，缺失或类型不符时返回默认值
func (a Args) String(key, def string) string {
	if v, ok := a[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int 读取整数参数；JSON 数字解码为 float64，这里一并兼容
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

// Float 读取浮点参数
func (a Args) Float(key string, def float64) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Bool 读取布尔参数
func (a Args) Bool(key string, def bool) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return def
}

// Map 读取嵌套对象参数
func (a Args) Map(key string) map[string]any {
	if v, ok := a[key].(map[string]any); ok {
		return v
	}
	return nil
}

// StringSlice 读取字符串数组参数
func (a Args) StringSlice(key string) []string {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// MapSlice 读取对象数组参数
func (a Args) MapSlice(key string) []map[string]any {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Grid 读取二维数组参数（data-write 的负载）
func (a Args) Grid(key string) ([][]any, error) {
	raw, ok := a[key].([]any)
	if !ok {
		return nil, core.Validationf("%s must be a 2D array", key)
	}
	grid := make([][]any, 0, len(raw))
	for i, rowAny := range raw {
		row, ok := rowAny.([]any)
		if !ok {
			return nil, core.Validationf("%s row %d is not an array", key, i)
		}
		grid = append(grid, row)
	}
	return grid, nil
}
