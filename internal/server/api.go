package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hiel/internal/core"
)

// RegisterRoutes 注册 API 路由
func (s *Server) RegisterRoutes(router *gin.RouterGroup) {
	// 操作调度
	router.POST("/ops/:name", s.ExecuteOperation)
	router.POST("/dispatch", s.DispatchOperation)
	router.POST("/batch", s.ExecuteBatch)

	// 系统状态
	router.GET("/status", s.GetStatus)
	router.GET("/operations", s.ListOperations)
	router.GET("/history", s.GetHistory)
}

// statusFor 错误类型到 HTTP 状态码的映射；信封本身对所有结果保持同一结构
func statusFor(resp core.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.ErrorKind {
	case string(core.KindValidation):
		return http.StatusBadRequest
	case string(core.KindSecurity):
		return http.StatusForbidden
	case string(core.KindNotFound), string(core.KindFileSystem):
		return http.StatusNotFound
	case string(core.KindPerformance):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ExecuteOperation POST /api/ops/:name 请求体即操作参数
func (s *Server) ExecuteOperation(c *gin.Context) {
	var args map[string]any
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, core.Fail(core.Validationf("invalid JSON body: %v", err)))
		return
	}
	resp := s.registry.Dispatch(c.Request.Context(), c.Param("name"), args)
	c.JSON(statusFor(resp), resp)
}

// dispatchRequest POST /api/dispatch 的请求体
type dispatchRequest struct {
	Operation string         `json:"operation" binding:"required"`
	Args      map[string]any `json:"args"`
}

// DispatchOperation POST /api/dispatch 操作名放在请求体里
func (s *Server) DispatchOperation(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, core.Fail(core.Validationf("invalid request: %v", err)))
		return
	}
	if req.Args == nil {
		req.Args = map[string]any{}
	}
	resp := s.registry.Dispatch(c.Request.Context(), req.Operation, req.Args)
	c.JSON(statusFor(resp), resp)
}

// batchRequest POST /api/batch 的请求体
type batchRequest struct {
	Operations []map[string]any `json:"operations" binding:"required"`
}

// ExecuteBatch POST /api/batch 顺序执行一组操作，单项失败不中断
func (s *Server) ExecuteBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, core.Fail(core.Validationf("invalid request: %v", err)))
		return
	}
	ops := make([]any, len(req.Operations))
	for i, op := range req.Operations {
		ops[i] = op
	}
	resp := s.registry.Dispatch(c.Request.Context(), "batch-execute", map[string]any{"operations": ops})
	// 批量整体总是 200，单项结果在 results 里
	c.JSON(http.StatusOK, resp)
}

// GetStatus GET /api/status
func (s *Server) GetStatus(c *gin.Context) {
	resp := s.registry.Dispatch(c.Request.Context(), "server-status", map[string]any{})
	c.JSON(statusFor(resp), resp)
}

// ListOperations GET /api/operations
func (s *Server) ListOperations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"total":      len(s.registry.Operations()),
		"operations": s.registry.Describe(),
	})
}

// GetHistory GET /api/history?limit=50
func (s *Server) GetHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "enabled": false, "records": []any{}})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 50
	}
	records, err := s.history.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, core.Fail(core.Internalf(err, "failed to load history")))
		return
	}
	totals, err := s.history.Aggregate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, core.Fail(core.Internalf(err, "failed to aggregate history")))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"enabled": true,
		"totals":  totals,
		"records": records,
	})
}
