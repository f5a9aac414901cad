package handler

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"

	appchat "github.com/artqa/backend/internal/application/chat"
	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
	applog "github.com/artqa/backend/internal/infrastructure/log"
	"github.com/artqa/backend/internal/interfaces/http/response"
)

// SessionCookieName 会话 Cookie 名
const SessionCookieName = "session_id"

// ChatHandler 问答接口处理器
type ChatHandler struct {
	chatService *appchat.Service
	manager     *config.Manager
	logger      *slog.Logger
}

// NewChatHandler 创建问答接口处理器
func NewChatHandler(chatService *appchat.Service, manager *config.Manager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		manager:     manager,
		logger:      applog.NewModuleLogger("http", "chat"),
	}
}

// AskRequest 问答请求
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// Ask 问答接口，支持多轮对话
// 会话 ID 优先级：请求体 > Cookie > 服务端新建
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "请求格式错误")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID, _ = c.Cookie(SessionCookieName)
	}

	result, err := h.chatService.Ask(c.Request.Context(), sessionID, req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			response.Error(c, http.StatusBadRequest, "问题不能为空")
			return
		}
		h.logger.Error("问答处理失败", "error", err)
		response.ErrorWithDetail(c, http.StatusInternalServerError, "问答处理失败", err.Error())
		return
	}

	h.setSessionCookie(c, result.SessionID)
	response.Success(c, gin.H{
		"answer":     result.Answer,
		"session_id": result.SessionID,
	})
}

// History 获取对话历史
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := h.resolveSessionID(c)
	if sessionID == "" {
		response.Fail(c, "无效的会话ID")
		return
	}

	session, err := h.chatService.History(sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.Fail(c, "无效的会话ID")
			return
		}
		h.logger.Error("获取历史失败", "error", err)
		response.ErrorWithDetail(c, http.StatusInternalServerError, "获取历史失败", err.Error())
		return
	}

	userQueries := make([]string, 0, len(session.Messages)/2)
	botResponses := make([]string, 0, len(session.Messages)/2)
	for _, msg := range session.Messages {
		switch msg.Role {
		case domain.RoleUser:
			userQueries = append(userQueries, msg.Content)
		case domain.RoleAssistant:
			botResponses = append(botResponses, msg.Content)
		}
	}

	totalLength := 0
	for _, msg := range session.Messages {
		totalLength += len([]rune(msg.Content))
	}
	limits := h.manager.Snapshot().Store.Limits

	response.Success(c, gin.H{
		"history": gin.H{
			"user_queries":  userQueries,
			"bot_responses": botResponses,
			"created_at":    session.CreatedAt.Format(time.RFC3339),
			"updated_at":    session.UpdatedAt.Format(time.RFC3339),
		},
		"history_info": gin.H{
			"message_count":    len(session.Messages),
			"total_length":     totalLength,
			"max_messages":     limits.MaxMessages,
			"max_total_length": limits.MaxTotalLength,
		},
	})
}

// Clear 清除对话历史并移除会话 Cookie
func (h *ChatHandler) Clear(c *gin.Context) {
	sessionID := h.resolveSessionID(c)
	if sessionID == "" {
		response.Fail(c, "无效的会话ID")
		return
	}

	if err := h.chatService.ClearHistory(sessionID); err != nil {
		h.logger.Error("清除历史失败", "error", err)
		response.ErrorWithDetail(c, http.StatusInternalServerError, "清除历史失败", err.Error())
		return
	}

	// 清除 Cookie
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	response.Success(c, gin.H{"message": "对话历史已清除"})
}

// resolveSessionID 解析会话 ID：查询参数优先，其次 Cookie
func (h *ChatHandler) resolveSessionID(c *gin.Context) string {
	if sessionID := c.Query(SessionCookieName); sessionID != "" {
		return sessionID
	}
	sessionID, _ := c.Cookie(SessionCookieName)
	return sessionID
}

// setSessionCookie 写入会话 Cookie
func (h *ChatHandler) setSessionCookie(c *gin.Context, sessionID string) {
	maxAge := h.manager.Snapshot().Server.CookieMaxAge
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sessionID, maxAge, "/", "", false, true)
}
