package chat

import "time"

// Role 消息角色
type Role string

const (
	// RoleSystem 系统角色
	RoleSystem Role = "system"
	// RoleUser 用户角色
	RoleUser Role = "user"
	// RoleAssistant 助手角色
	RoleAssistant Role = "assistant"
)

// Message 对话消息，创建后不可变
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage 创建消息
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Session 会话：带有界保留策略的有序对话历史
type Session struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalContentLength 所有消息内容的字符总长度（按 rune 计数）
func (s *Session) TotalContentLength() int {
	return totalContentLength(s.Messages)
}

// Round 一轮对话：一条用户消息及其后续的助手回复
type Round struct {
	User      Message
	Assistant Message
}
