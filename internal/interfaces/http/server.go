package http

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/artqa/backend/internal/infrastructure/config"
	"github.com/artqa/backend/internal/infrastructure/log"
	"github.com/artqa/backend/internal/interfaces/http/handler"
	"github.com/artqa/backend/internal/interfaces/http/middleware"
	"github.com/artqa/backend/internal/interfaces/mcp"
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	chatHandler *handler.ChatHandler,
	healthHandler *handler.HealthHandler,
	manager *config.Manager,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	router := gin.Default()

	logger := log.NewModuleLogger("http", "server")

	// 请求 ID 注入，供日志关联同一请求
	router.Use(middleware.RequestID())
	// Windows 下 curl 可能以 GBK 发送中文请求体
	router.Use(middleware.EnsureUTF8Body())

	// 注册路由
	api := router.Group("/api")
	{
		api.POST("/ask", chatHandler.Ask)
		api.GET("/history", chatHandler.History)
		api.DELETE("/history", chatHandler.Clear)
	}

	// 健康检查
	router.GET("/health", healthHandler.Check)

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: manager.Snapshot().Server.HTTPPort,
		logger:   logger,
	}
}

// Port 返回监听端口
func (s *HTTPServer) Port() string {
	return s.httpPort
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:    s.httpPort,
		Handler: s.router,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	return s.server.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
