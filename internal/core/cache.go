package core

import (
	"container/list"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/singleflight"
)

// cacheEntry 缓存条目：工作簿句柄 + 装载时间 + 源文件 mtime
type cacheEntry struct {
	path         string
	file         *excelize.File
	loadedAt     time.Time
	sourceMtime  time.Time
	lastAccessed time.Time
	accessCount  int64
}

// CacheStats 缓存统计（供 server-status 上报）
type CacheStats struct {
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// WorkbookCache 有界 LRU 工作簿缓存
//
// 以解析后的绝对路径为键；条目在 TTL 过期或磁盘 mtime 变化后视为失效，
// 失效条目绝不对外提供，会被丢弃并重新装载。
// 并发装载同一路径时通过 singleflight 合并为一次磁盘读取。
// 进程启动时构造一次，显式传递给调度器和处理器，不使用全局单例。
type WorkbookCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // 队首为最近使用
	maxSize int
	ttl     time.Duration

	group singleflight.Group

	hits      int64
	misses    int64
	evictions int64
}

// NewWorkbookCache 创建缓存，maxSize 最小为 1
func NewWorkbookCache(maxSize int, ttl time.Duration) *WorkbookCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &WorkbookCache{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// GetOrLoad 返回缓存中的句柄；未命中或失效时从磁盘装载
// 文件不存在且 allowCreate 为 true 时创建新的空工作簿（不落盘）
func (c *WorkbookCache) GetOrLoad(path string, allowCreate bool) (*excelize.File, error) {
	if f := c.lookup(path); f != nil {
		return f, nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		// 双重检查：等待期间其他调用可能已装载完成
		// 未命中已在外层 lookup 计过一次，这里不重复计数
		if f := c.probe(path, false); f != nil {
			return f, nil
		}
		return c.load(path, allowCreate)
	})
	if err != nil {
		return nil, err
	}
	return v.(*excelize.File), nil
}

// lookup 缓存命中检查：键存在 → TTL 未过期 → 磁盘 mtime 未变化
// 任一不满足则按未命中处理并移除失效条目
func (c *WorkbookCache) lookup(path string) *excelize.File {
	return c.probe(path, true)
}

// probe 同 lookup；count 为 false 时不更新命中/未命中计数
func (c *WorkbookCache) probe(path string, count bool) *excelize.File {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[path]
	if !ok {
		if count {
			c.misses++
		}
		return nil
	}
	entry := elem.Value.(*cacheEntry)

	now := time.Now()
	if c.ttl > 0 && now.Sub(entry.loadedAt) > c.ttl {
		c.removeLocked(elem)
		if count {
			c.misses++
		}
		return nil
	}

	info, err := os.Stat(path)
	if err != nil || !info.ModTime().Equal(entry.sourceMtime) {
		// 文件被外部修改或删除，缓存内容已过期
		c.removeLocked(elem)
		if count {
			c.misses++
		}
		return nil
	}

	entry.lastAccessed = now
	entry.accessCount++
	c.lru.MoveToFront(elem)
	if count {
		c.hits++
	}
	return entry.file
}

// load 从磁盘装载并插入缓存；仅由 singleflight 回调调用
func (c *WorkbookCache) load(path string, allowCreate bool) (*excelize.File, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if !allowCreate {
			return nil, FileSystemf(err, "file does not exist: %s", path)
		}
		// 新建的空工作簿不进缓存：落盘前没有 mtime 可校验
		return excelize.NewFile(), nil
	}
	if err != nil {
		return nil, FileSystemf(err, "failed to stat %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Internalf(err, "failed to open workbook %s", path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(path, f, info.ModTime())
	return f, nil
}

// Put 将已知句柄放入缓存（workbook-create 保存后复用句柄）
func (c *WorkbookCache) Put(path string, f *excelize.File) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[path]; ok {
		c.removeLocked(elem)
	}
	c.insertLocked(path, f, info.ModTime())
}

// insertLocked 插入条目，超出容量时淘汰最久未使用者；需持有 c.mu
func (c *WorkbookCache) insertLocked(path string, f *excelize.File, mtime time.Time) {
	now := time.Now()
	entry := &cacheEntry{
		path:         path,
		file:         f,
		loadedAt:     now,
		sourceMtime:  mtime,
		lastAccessed: now,
	}
	c.entries[path] = c.lru.PushFront(entry)

	for len(c.entries) > c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		c.evictions++
	}
}

// removeLocked 移除并关闭条目；需持有 c.mu
func (c *WorkbookCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.entries, entry.path)
	c.lru.Remove(elem)
	entry.file.Close()
}

// Invalidate 移除并关闭指定路径的条目
// 保存会改变磁盘 mtime，保存后必须调用，否则下一次 mtime 校验
// 会把内存中保存前的句柄误判为仍然新鲜——这是正确性要求而不是优化
func (c *WorkbookCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[path]; ok {
		c.removeLocked(elem)
	}
}

// Contains 判断路径是否在缓存中（测试用）
func (c *WorkbookCache) Contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[path]
	return ok
}

// Stats 返回缓存统计快照
func (c *WorkbookCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   rate,
	}
}

// Shutdown 关闭全部缓存句柄
func (c *WorkbookCache) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		elem.Value.(*cacheEntry).file.Close()
	}
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// SaveWorkbook 持有路径专属锁保存工作簿，随后使缓存失效
// 必要时创建父目录；同一路径的并发保存被串行化
func SaveWorkbook(cache *WorkbookCache, locks *LockTable, f *excelize.File, path string) error {
	mu := locks.Acquire(path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return FileSystemf(err, "failed to create directory for %s", path)
	}
	if err := f.SaveAs(path); err != nil {
		return Internalf(err, "failed to save workbook %s", path)
	}
	cache.Invalidate(path)
	return nil
}
