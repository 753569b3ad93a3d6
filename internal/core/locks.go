package core

import "sync"

// LockTable 路径 → 互斥锁
// 锁按需创建且在进程生命周期内不移除，有界工作集下条目数可控
type LockTable struct {
	locks sync.Map // string -> *sync.Mutex
}

// NewLockTable 创建空锁表
func NewLockTable() *LockTable {
	return &LockTable{}
}

// Acquire 返回路径专属的互斥锁，首次请求时创建
func (t *LockTable) Acquire(path string) *sync.Mutex {
	if mu, ok := t.locks.Load(path); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := t.locks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Len 当前锁表大小（供 server-status 上报）
func (t *LockTable) Len() int {
	n := 0
	t.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
