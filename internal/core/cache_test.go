package core

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", "hello"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func TestCache_HitReturnsSameHandle(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path)

	cache := NewWorkbookCache(4, time.Minute)
	defer cache.Shutdown()

	f1, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	f2, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if f1 != f2 {
		t.Fatalf("second load should hit the cache")
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("unexpected stats: hits=%d misses=%d", stats.Hits, stats.Misses)
	}
}

func TestCache_ConcurrentLoadsCollapse(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path)

	cache := NewWorkbookCache(4, time.Minute)
	defer cache.Shutdown()

	const n = 16
	handles := make([]*excelize.File, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			f, err := cache.GetOrLoad(path, false)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
				return
			}
			handles[i] = f
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < n; i++ {
		if handles[i] != handles[0] {
			t.Fatalf("goroutine %d got a different handle: concurrent loads must collapse", i)
		}
	}
	if got := cache.Stats().Size; got != 1 {
		t.Fatalf("cache size want=1 got=%d", got)
	}
}

func TestCache_StaleOnMtimeChange(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path)

	cache := NewWorkbookCache(4, time.Minute)
	defer cache.Shutdown()

	f1, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}

	// 模拟外部修改：重写文件内容即可改变 mtime
	writeWorkbook(t, path)

	f2, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("GetOrLoad after rewrite: %v", err)
	}
	if f1 == f2 {
		t.Fatalf("stale handle returned after on-disk change")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path)

	cache := NewWorkbookCache(4, 10*time.Millisecond)
	defer cache.Shutdown()

	f1, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	f2, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("GetOrLoad after TTL: %v", err)
	}
	if f1 == f2 {
		t.Fatalf("entry should be reloaded after TTL expiry")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := make([]string, 3)
	for i := range paths {
		paths[i] = filepath.Join(dir, "book"+string(rune('a'+i))+".xlsx")
		writeWorkbook(t, paths[i])
	}

	cache := NewWorkbookCache(2, time.Minute)
	defer cache.Shutdown()

	for _, p := range paths {
		if _, err := cache.GetOrLoad(p, false); err != nil {
			t.Fatalf("GetOrLoad %s: %v", p, err)
		}
	}

	if cache.Contains(paths[0]) {
		t.Fatalf("oldest entry should have been evicted")
	}
	if !cache.Contains(paths[1]) || !cache.Contains(paths[2]) {
		t.Fatalf("recent entries should remain cached")
	}
	if got := cache.Stats().Evictions; got != 1 {
		t.Fatalf("evictions want=1 got=%d", got)
	}
}

func TestCache_MissingFileWithoutCreate(t *testing.T) {
	t.Parallel()
	cache := NewWorkbookCache(2, time.Minute)
	defer cache.Shutdown()

	if _, err := cache.GetOrLoad(filepath.Join(t.TempDir(), "absent.xlsx"), false); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCache_AllowCreateNotCached(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "new.xlsx")
	cache := NewWorkbookCache(2, time.Minute)
	defer cache.Shutdown()

	f, err := cache.GetOrLoad(path, true)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	defer f.Close()
	// 未落盘的新工作簿没有 mtime 可校验，不应进缓存
	if cache.Contains(path) {
		t.Fatalf("unsaved workbook must not be cached")
	}
}

func TestSaveWorkbook_InvalidatesCache(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path)

	cache := NewWorkbookCache(4, time.Minute)
	defer cache.Shutdown()
	locks := NewLockTable()

	f, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B1", 42); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	if err := SaveWorkbook(cache, locks, f, path); err != nil {
		t.Fatalf("SaveWorkbook: %v", err)
	}
	if cache.Contains(path) {
		t.Fatalf("save must invalidate the cached entry")
	}

	f2, err := cache.GetOrLoad(path, false)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := f2.GetCellValue("Sheet1", "B1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "42" {
		t.Fatalf("B1 want=42 got=%q", got)
	}
}
