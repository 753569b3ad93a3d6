package ops

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"hiel/internal/config"
	"hiel/internal/core"
	"hiel/internal/history"
)

// Env 处理器运行环境，进程启动时构造一次并显式传入
type Env struct {
	Cfg     *config.AppConfig
	Sandbox *core.Sandbox
	Cache   *core.WorkbookCache
	Locks   *core.LockTable
	History *history.Store // 可为 nil（历史记录关闭时）
}

// HandlerFunc 操作处理器
// 返回的 map 会被调度器归一为统一信封；错误必须带类型（core.OpError）
type HandlerFunc func(ctx context.Context, env *Env, args Args) (map[string]any, error)

// Spec 一个操作的静态注册项：规范名 + 参数声明 + 处理器
type Spec struct {
	Name        string
	Group       string
	Description string
	Required    []string
	Optional    []string
	Handler     HandlerFunc
}

// Registry 操作注册表 / 调度器
// 注册表和别名表在启动时构建一次，请求期间只读
type Registry struct {
	env     *Env
	specs   map[string]*Spec
	aliases map[string]string
	names   []string
	sem     *semaphore.Weighted
	timeout time.Duration
}

// New 构建注册表，注册全部操作和历史别名
func New(env *Env) *Registry {
	r := &Registry{
		env:     env,
		specs:   make(map[string]*Spec),
		aliases: make(map[string]string),
		sem:     semaphore.NewWeighted(int64(env.Cfg.Limits.MaxConcurrentOps)),
		timeout: env.Cfg.OperationTimeout(),
	}
	r.registerAll()

	for name := range r.specs {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// register 注册单个操作，并自动登记下划线形式的别名
func (r *Registry) register(spec Spec) {
	if _, dup := r.specs[spec.Name]; dup {
		panic(fmt.Sprintf("duplicate operation: %s", spec.Name))
	}
	s := spec
	r.specs[spec.Name] = &s
	// data-write → data_write 这类下划线写法历史上都有效
	underscore := strings.ReplaceAll(spec.Name, "-", "_")
	if underscore != spec.Name {
		r.aliases[underscore] = spec.Name
	}
}

// alias 登记历史别名
func (r *Registry) alias(old, canonical string) {
	r.aliases[old] = canonical
}

// Operations 返回全部规范操作名（有序）
func (r *Registry) Operations() []string {
	return r.names
}

// Describe 返回操作目录（供 GET /api/operations）
func (r *Registry) Describe() []map[string]any {
	out := make([]map[string]any, 0, len(r.names))
	for _, name := range r.names {
		spec := r.specs[name]
		out = append(out, map[string]any{
			"name":        spec.Name,
			"group":       spec.Group,
			"description": spec.Description,
			"required":    spec.Required,
			"optional":    spec.Optional,
		})
	}
	return out
}

// Dispatch 调度一次操作：别名解析 → 必填参数校验 → 执行 → 信封归一
// 这是错误归一的唯一边界，处理器抛出的任何错误都在此转换为统一信封
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) core.Response {
	return r.dispatch(ctx, name, args, true)
}

// dispatch 的 limit 控制是否占用并发额度
// 批量操作的子项不再单独占用：外层批量已经持有一个额度，嵌套获取会死锁
func (r *Registry) dispatch(ctx context.Context, name string, args map[string]any, limit bool) core.Response {
	start := time.Now()

	canonical := name
	if target, ok := r.aliases[name]; ok {
		canonical = target
	}

	spec, ok := r.specs[canonical]
	if !ok {
		resp := core.Response{
			Success:   false,
			Error:     fmt.Sprintf("unknown operation: %s", name),
			ErrorKind: string(core.KindNotFound),
			Data:      map[string]any{"available_operations": r.names},
			Suggestions: []string{
				"Check the operation name for typos",
				"List available operations via server-status",
			},
		}
		r.record(canonical, resp, start)
		return resp
	}

	if missing := missingParams(spec.Required, args); len(missing) > 0 {
		resp := core.Fail(core.Validationf("missing required parameters: %s", strings.Join(missing, ", ")))
		resp.Errors = missing
		r.record(canonical, resp, start)
		return resp
	}

	if limit {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			resp := core.Fail(core.Performancef("server at capacity: %v", err))
			r.record(canonical, resp, start)
			return resp
		}
		defer r.sem.Release(1)
	}

	resp := r.invoke(ctx, spec, args)
	r.record(canonical, resp, start)
	return resp
}

// invoke 带超时执行处理器
// 底层的表格库调用无法中途打断，超时只意味着“不再等待并报告失败”，
// 磁盘上的写入效果未定义，调用方重试前应重新校验文件状态
func (r *Registry) invoke(ctx context.Context, spec *Spec, args map[string]any) core.Response {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		data map[string]any
		err  error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- outcome{err: core.Internalf(fmt.Errorf("%v", rec), "handler panic in %s", spec.Name)}
			}
		}()
		data, err := spec.Handler(tctx, r.env, Args(args))
		ch <- outcome{data: data, err: err}
	}()

	select {
	case <-tctx.Done():
		return core.Fail(core.Performancef(
			"operation %s timed out after %s; on-disk effect is undefined, re-validate file state before retrying",
			spec.Name, r.timeout))
	case res := <-ch:
		if res.err != nil {
			resp := core.Fail(res.err)
			if resp.ErrorKind == string(core.KindSecurity) {
				// 安全失败单独记录，可能意味着恶意输入
				log.Printf("security: operation %s rejected: %s", spec.Name, resp.Error)
			}
			return resp
		}
		return core.OK(res.data)
	}
}

// record 写入操作历史；历史存储关闭时为空操作
func (r *Registry) record(operation string, resp core.Response, start time.Time) {
	if r.env.History == nil {
		return
	}
	if err := r.env.History.Append(operation, resp.Success, resp.ErrorKind, time.Since(start)); err != nil {
		log.Printf("failed to record operation history: %v", err)
	}
}

// missingParams 找出缺失或为 null 的必填参数
func missingParams(required []string, args map[string]any) []string {
	var missing []string
	for _, key := range required {
		v, ok := args[key]
		if !ok || v == nil {
			missing = append(missing, key)
		}
	}
	return missing
}
