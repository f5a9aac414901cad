package chat

import (
	"strings"

	domain "github.com/artqa/backend/internal/domain/chat"
)

// QueryPlanner 检索查询规划器。
// 短问题（如"那在中国呢？"）往往依赖上下文，单独检索命中率很低，
// 因此用最近几轮对话的内容扩展检索查询。这是启发式的兜底策略，
// 不做语义消解；阈值与参考轮数均可配置。
type QueryPlanner struct {
	shortQueryThreshold int
	contextRounds       int
}

// NewQueryPlanner 创建查询规划器
func NewQueryPlanner(shortQueryThreshold, contextRounds int) *QueryPlanner {
	return &QueryPlanner{
		shortQueryThreshold: shortQueryThreshold,
		contextRounds:       contextRounds,
	}
}

// Plan 决定本回合的检索查询串。
// 问题字符数（按 rune 计）达到阈值时原样返回；
// 否则把最近对话内容（新在前）与原问题拼接为扩展查询。
func (p *QueryPlanner) Plan(question string, history []domain.Message) string {
	question = strings.TrimSpace(question)
	if len([]rune(question)) >= p.shortQueryThreshold {
		return question
	}

	recent := domain.RecentSuffix(history, p.contextRounds)
	if len(recent) == 0 {
		return question
	}

	parts := make([]string, 0, len(recent)+1)
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		if msg.Role != domain.RoleUser && msg.Role != domain.RoleAssistant {
			continue
		}
		if content := strings.TrimSpace(msg.Content); content != "" {
			parts = append(parts, content)
		}
	}
	parts = append(parts, question)

	return strings.TrimSpace(strings.Join(parts, " "))
}
