package wire

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/artqa/backend/internal/infrastructure/config"
	applog "github.com/artqa/backend/internal/infrastructure/log"
	"github.com/artqa/backend/internal/infrastructure/vector"
	"github.com/artqa/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer    *interfaces.HTTPServer
	MCPServer     *interfaces.MCPServer
	configWatcher *config.Watcher
	searcher      *vector.Searcher
	db            *sql.DB
	logger        *slog.Logger
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	configWatcher *config.Watcher,
	searcher *vector.Searcher,
	db *sql.DB,
) *App {
	return &App{
		HTTPServer:    httpServer,
		MCPServer:     mcpServer,
		configWatcher: configWatcher,
		searcher:      searcher,
		db:            db,
		logger:        applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting ArtQA backend application")

	// 启动配置热重载监听
	if a.configWatcher != nil {
		if err := a.configWatcher.Start(); err != nil {
			// 配置热重载不可用不阻止启动，继续使用启动时的配置
			a.logger.Warn("Failed to start config watcher",
				"error", err,
			)
		}
	}

	// 确保向量集合存在，失败不阻止启动（Qdrant 可能尚未就绪）
	if a.searcher != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.searcher.EnsureCollection(ctx); err != nil {
				a.logger.Warn("Failed to ensure vector collection",
					"error", err,
				)
			}
		}()
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("HTTP server stopped",
				"error", err,
			)
		}
	}()

	a.logger.Info("ArtQA backend application started successfully")

	// MCP 服务器通过 HTTP Handler 提供服务，不需要单独启动
	// 已在 HTTP 服务器中注册 /mcp/sse 端点

	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping ArtQA backend application")

	// 停止配置监听
	if a.configWatcher != nil {
		if err := a.configWatcher.Stop(); err != nil {
			a.logger.Error("Failed to stop config watcher",
				"error", err,
			)
		}
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		return err
	}
	if err := a.MCPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop MCP server",
			"error", err,
		)
		return err
	}

	// 关闭 Qdrant 连接
	if a.searcher != nil {
		if err := a.searcher.Close(); err != nil {
			a.logger.Error("Failed to close vector searcher",
				"error", err,
			)
		}
	}

	// 关闭数据库连接
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database connection",
				"error", err,
			)
			return err
		}
	}

	a.logger.Info("ArtQA backend application stopped successfully")

	return nil
}
