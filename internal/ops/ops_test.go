package ops

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hiel/internal/config"
	"hiel/internal/core"
)

// newTestRegistry 构造指向临时目录的注册表；历史记录关闭
func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	root := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Files.AllowedRoots = []string{root}

	sandbox, err := core.NewSandbox(cfg.Files.AllowedRoots, cfg.Files.AllowedExtensions, cfg.Files.MaxFileSize)
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	cache := core.NewWorkbookCache(cfg.Cache.MaxSize, time.Minute)
	t.Cleanup(cache.Shutdown)

	r := New(&Env{
		Cfg:     cfg,
		Sandbox: sandbox,
		Cache:   cache,
		Locks:   core.NewLockTable(),
	})
	return r, root
}

// mustDispatch 执行操作并要求成功
func mustDispatch(t *testing.T, r *Registry, name string, args map[string]any) core.Response {
	t.Helper()
	resp := r.Dispatch(context.Background(), name, args)
	if !resp.Success {
		t.Fatalf("%s failed: %s (%s)", name, resp.Error, resp.ErrorKind)
	}
	return resp
}

// newWorkbookAt 通过 workbook-create 准备一个测试工作簿
func newWorkbookAt(t *testing.T, r *Registry, root, name string) string {
	t.Helper()
	path := filepath.Join(root, name)
	mustDispatch(t, r, "workbook-create", map[string]any{"filepath": path})
	return path
}
