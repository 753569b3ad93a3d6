package server

import (
	"log"

	"github.com/gin-gonic/gin"

	"hiel/internal/config"
	"hiel/internal/core"
	"hiel/internal/history"
	"hiel/internal/ops"
)

// Server HTTP服务器
type Server struct {
	router   *gin.Engine
	registry *ops.Registry
	cache    *core.WorkbookCache
	history  *history.Store
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	sandbox, err := core.NewSandbox(cfg.Files.AllowedRoots, cfg.Files.AllowedExtensions, cfg.Files.MaxFileSize)
	if err != nil {
		log.Fatalf("Failed to initialize path sandbox: %v", err)
	}
	cache := core.NewWorkbookCache(cfg.Cache.MaxSize, cfg.CacheTTL())
	locks := core.NewLockTable()

	// 历史存储初始化失败不阻止启动，服务降级为无历史记录
	var hist *history.Store
	if cfg.History.Enabled && cfg.History.DBPath != "" {
		hist, err = history.New(cfg.History.DBPath)
		if err != nil {
			log.Printf("Failed to initialize history store, continuing without: %v", err)
			hist = nil
		}
	}

	registry := ops.New(&ops.Env{
		Cfg:     cfg,
		Sandbox: sandbox,
		Cache:   cache,
		Locks:   locks,
		History: hist,
	})

	s := &Server{
		router:   gin.Default(),
		registry: registry,
		cache:    cache,
		history:  hist,
	}
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.RegisterRoutes(api)
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Registry 获取操作注册表（用于测试）
func (s *Server) Registry() *ops.Registry {
	return s.registry
}

// Close 释放缓存的工作簿句柄并关闭历史存储
func (s *Server) Close() {
	s.cache.Shutdown()
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			log.Printf("Failed to close history store: %v", err)
		}
	}
}
