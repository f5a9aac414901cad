package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appchat "github.com/artqa/backend/internal/application/chat"
	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
)

// MCPServer MCP 服务器，把问答与文献检索能力暴露给 Agent 调用
type MCPServer struct {
	server      *mcp.Server
	handler     http.Handler
	chatService *appchat.Service
	searcher    domain.Searcher
	manager     *config.Manager
}

// NewServer 创建 MCP 服务器
func NewServer(
	chatService *appchat.Service,
	searcher domain.Searcher,
	manager *config.Manager,
) *MCPServer {
	// 创建 MCP 服务器实例
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "artqa-backend",
			Version: "1.0.0",
		},
		nil, // 使用默认能力
	)

	mcpServer := &MCPServer{
		server:      server,
		chatService: chatService,
		searcher:    searcher,
		manager:     manager,
	}

	// 注册工具：ask_question
	mcp.AddTool(server, &mcp.Tool{
		Name: "ask_question",
		Description: `Ask a question about public art scholarship. The answer is grounded in the literature collection and cites sources.
Parameters:
- question (string, required): The question in Chinese or English
- session_id (string, optional): Session ID for multi-turn conversation, omit to start a new session

Returns: answer text, session ID, and number of retrieved literature fragments.`,
	}, mcpServer.askQuestionTool)

	// 注册工具：search_literature
	mcp.AddTool(server, &mcp.Tool{
		Name: "search_literature",
		Description: `Search the public art literature collection by semantic similarity, without generating an answer.
Parameters:
- query (string, required): Natural language search query
- limit (int, optional): Maximum number of results (default from server config)

Returns: List of literature fragments with source name, page number, and similarity score.`,
	}, mcpServer.searchLiteratureTool)

	// 创建 SSE Handler
	handler := mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)

	mcpServer.handler = handler
	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Start 启动服务器（HTTP/SSE 模式）
// MCP 服务器通过 HTTP Handler 提供服务，不需要单独启动
func (s *MCPServer) Start() error {
	return nil
}

// Stop 停止服务器
func (s *MCPServer) Stop() error {
	// HTTP/SSE 模式下，由 HTTP 服务器统一管理生命周期
	return nil
}
