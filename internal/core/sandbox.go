package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox 文件路径校验器
// 解析用户传入的路径并限制在允许的根目录内，纯检查，无副作用
type Sandbox struct {
	roots       []string
	allowedExts map[string]bool
	maxFileSize int64
}

// NewSandbox 创建路径校验器；roots 会被解析为绝对路径
func NewSandbox(roots []string, allowedExts []string, maxFileSize int64) (*Sandbox, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("sandbox requires at least one allowed root")
	}
	resolved := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve allowed root %q: %w", r, err)
		}
		resolved = append(resolved, filepath.Clean(abs))
	}
	exts := make(map[string]bool, len(allowedExts))
	for _, e := range allowedExts {
		exts[strings.ToLower(e)] = true
	}
	return &Sandbox{roots: resolved, allowedExts: exts, maxFileSize: maxFileSize}, nil
}

// Roots 返回允许访问的根目录（供 server-status 上报）
func (s *Sandbox) Roots() []string {
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// exportExts 导出目标允许的扩展名
var exportExts = map[string]bool{".csv": true, ".json": true, ".html": true, ".htm": true}

// Validate 校验并解析路径
// 返回绝对路径；越界返回 SecurityError，扩展名/存在性/大小问题返回相应错误
// allowCreate 为 false 时要求文件已存在
func (s *Sandbox) Validate(path string, allowCreate bool) (string, []string, error) {
	return s.validate(path, allowCreate, s.allowedExts)
}

// ValidateExport 校验导出目标路径：根目录约束同 Validate，扩展名按导出格式放开
func (s *Sandbox) ValidateExport(path string) (string, []string, error) {
	return s.validate(path, true, exportExts)
}

func (s *Sandbox) validate(path string, allowCreate bool, exts map[string]bool) (string, []string, error) {
	if path == "" {
		return "", nil, Validationf("filepath must be a non-empty string")
	}

	var warnings []string
	if !filepath.IsAbs(path) {
		warnings = append(warnings, fmt.Sprintf("relative path %q resolved against working directory", path))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, Validationf("invalid path %q: %v", path, err)
	}
	abs = filepath.Clean(abs)

	if !s.inAllowedRoot(abs) {
		return "", nil, Securityf("path outside allowed directories: %s", abs)
	}

	ext := strings.ToLower(filepath.Ext(abs))
	if !exts[ext] {
		return "", nil, Validationf("file extension %q is not allowed", ext)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", nil, Validationf("path is a directory, not a file: %s", abs)
		}
		if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
			return "", nil, Validationf("file too large: %d bytes (max: %d)", info.Size(), s.maxFileSize)
		}
	case os.IsNotExist(err):
		if !allowCreate {
			return "", nil, FileSystemf(err, "file does not exist: %s", abs)
		}
	default:
		return "", nil, FileSystemf(err, "failed to stat %s", abs)
	}

	return abs, warnings, nil
}

// inAllowedRoot 判断绝对路径是否位于某个允许的根目录之下
func (s *Sandbox) inAllowedRoot(abs string) bool {
	for _, root := range s.roots {
		if abs == root {
			return true
		}
		if strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
