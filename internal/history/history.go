package history

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store SQLite 操作历史存储层
type Store struct {
	db *sql.DB
}

// Record 一条操作记录
type Record struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	Success    bool      `json:"success"`
	ErrorKind  string    `json:"errorKind,omitempty"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Totals 历史聚合统计
type Totals struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// New 创建新的 Store 实例
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite 建议单连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema 初始化数据库结构
func (s *Store) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Append 追加一条操作记录
func (s *Store) Append(operation string, success bool, errorKind string, duration time.Duration) error {
	_, err := s.db.Exec(
		`INSERT INTO operation_log (id, operation, success, error_kind, duration_ms) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), operation, boolToInt(success), errorKind, duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to append operation log: %w", err)
	}
	return nil
}

// Recent 返回最近的 limit 条记录，按时间倒序
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, operation, success, error_kind, duration_ms, created_at
		 FROM operation_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation log: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var success int
		if err := rows.Scan(&r.ID, &r.Operation, &success, &r.ErrorKind, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation log row: %w", err)
		}
		r.Success = success != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Aggregate 返回成功/失败计数
func (s *Store) Aggregate() (Totals, error) {
	var t Totals
	row := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0)
		 FROM operation_log`)
	if err := row.Scan(&t.Total, &t.Successful); err != nil {
		return t, fmt.Errorf("failed to aggregate operation log: %w", err)
	}
	t.Failed = t.Total - t.Successful
	return t, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
