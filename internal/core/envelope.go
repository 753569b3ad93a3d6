package core

// Response 统一响应信封，所有操作的成败结果都归一到这个形状
type Response struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message,omitempty"`
	Error       string         `json:"error,omitempty"`
	ErrorKind   string         `json:"error_kind,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// OK 构造成功响应；data 中的 message / warnings 键会被提升到信封顶层
func OK(data map[string]any) Response {
	resp := Response{Success: true}
	if data == nil {
		return resp
	}
	if msg, ok := data["message"].(string); ok {
		resp.Message = msg
		delete(data, "message")
	}
	if warns, ok := data["warnings"].([]string); ok {
		resp.Warnings = warns
		delete(data, "warnings")
	}
	if len(data) > 0 {
		resp.Data = data
	}
	return resp
}

// Fail 将错误归一为失败响应
func Fail(err error) Response {
	opErr := Classify(err)
	return Response{
		Success:     false,
		Error:       opErr.Error(),
		ErrorKind:   string(opErr.Kind),
		Suggestions: opErr.Suggestions,
	}
}
