package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Files   FilesConfig   `toml:"files"`
	Cache   CacheConfig   `toml:"cache"`
	Limits  LimitsConfig  `toml:"limits"`
	History HistoryConfig `toml:"history"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// FilesConfig 文件沙箱配置
type FilesConfig struct {
	// AllowedRoots 允许访问的根目录列表；为空时默认为当前工作目录
	AllowedRoots []string `toml:"allowed_roots"`
	// AllowedExtensions 允许操作的文件扩展名
	AllowedExtensions []string `toml:"allowed_extensions"`
	// MaxFileSize 单个文件大小上限（字节）
	MaxFileSize int64 `toml:"max_file_size"`
}

// CacheConfig 工作簿缓存配置
type CacheConfig struct {
	MaxSize    int `toml:"max_size"`
	TTLSeconds int `toml:"ttl_seconds"`
}

// LimitsConfig 操作限制配置
type LimitsConfig struct {
	MaxRowsPerCall       int `toml:"max_rows_per_call"`
	MaxColsPerCall       int `toml:"max_cols_per_call"`
	MaxConcurrentOps     int `toml:"max_concurrent_ops"`
	OperationTimeoutSecs int `toml:"operation_timeout_seconds"`
}

// HistoryConfig 操作历史配置
type HistoryConfig struct {
	DBPath  string `toml:"db_path"`
	Enabled bool   `toml:"enabled"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &AppConfig{
		Server: ServerConfig{
			Port:    20717,
			DevMode: false,
		},
		Files: FilesConfig{
			AllowedRoots:      []string{cwd},
			AllowedExtensions: []string{".xlsx", ".xlsm", ".xltx", ".xltm", ".csv"},
			MaxFileSize:       100 * 1024 * 1024,
		},
		Cache: CacheConfig{
			MaxSize:    20,
			TTLSeconds: 300,
		},
		Limits: LimitsConfig{
			MaxRowsPerCall:       10000,
			MaxColsPerCall:       1000,
			MaxConcurrentOps:     5,
			OperationTimeoutSecs: 300,
		},
		History: HistoryConfig{
			DBPath:  filepath.Join("data", "hiel.db"),
			Enabled: true,
		},
	}
}

// CacheTTL 缓存条目存活时间
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// OperationTimeout 单个操作超时时间
func (c *AppConfig) OperationTimeout() time.Duration {
	return time.Duration(c.Limits.OperationTimeoutSecs) * time.Second
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下；环境变量最后覆盖（用于 E2E / 容器部署）
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			applyEnvOverrides(config)
			config.normalize()
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	config.normalize()
	return config, nil
}

// applyEnvOverrides 环境变量覆盖
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("HIEL_ALLOWED_ROOTS"); v != "" {
		var roots []string
		for _, p := range strings.Split(v, string(os.PathListSeparator)) {
			p = strings.TrimSpace(p)
			if p != "" {
				roots = append(roots, p)
			}
		}
		if len(roots) > 0 {
			config.Files.AllowedRoots = roots
		}
	}
	if v := envInt64("HIEL_MAX_FILE_SIZE"); v > 0 {
		config.Files.MaxFileSize = v
	}
	if v := envInt("HIEL_CACHE_SIZE"); v > 0 {
		config.Cache.MaxSize = v
	}
	if v := envInt("HIEL_CACHE_TTL"); v > 0 {
		config.Cache.TTLSeconds = v
	}
	if v := envInt("HIEL_MAX_CONCURRENT"); v > 0 {
		config.Limits.MaxConcurrentOps = v
	}
	if v := envInt("HIEL_TIMEOUT"); v > 0 {
		config.Limits.OperationTimeoutSecs = v
	}
	if v := envInt("HIEL_MAX_ROWS"); v > 0 {
		config.Limits.MaxRowsPerCall = v
	}
	if v := envInt("HIEL_MAX_COLS"); v > 0 {
		config.Limits.MaxColsPerCall = v
	}
	if v := envInt("HIEL_PORT"); v > 0 {
		config.Server.Port = v
	}
	if v := os.Getenv("HIEL_HISTORY_DB"); v != "" {
		config.History.DBPath = v
	}
}

// normalize 兜底修正非法配置值
func (c *AppConfig) normalize() {
	if c.Cache.MaxSize < 1 {
		c.Cache.MaxSize = 1
	}
	if c.Limits.MaxConcurrentOps < 1 {
		c.Limits.MaxConcurrentOps = 1
	}
	if len(c.Files.AllowedRoots) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		c.Files.AllowedRoots = []string{cwd}
	}
	if len(c.Files.AllowedExtensions) == 0 {
		c.Files.AllowedExtensions = DefaultConfig().Files.AllowedExtensions
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envInt64(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
