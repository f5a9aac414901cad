package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/artqa/backend/internal/domain/chat"
)

func TestQueryPlanner_LongQuestionPassthrough(t *testing.T) {
	planner := NewQueryPlanner(10, 2)

	history := []domain.Message{
		domain.NewMessage(domain.RoleUser, "公共艺术的定义是什么"),
		domain.NewMessage(domain.RoleAssistant, "公共艺术是指……"),
	}

	question := "请介绍公共艺术在城市更新中的作用"
	// 长问题原样作为检索查询，不拼接历史
	assert.Equal(t, question, planner.Plan(question, history))
}

func TestQueryPlanner_ShortQuestionExpanded(t *testing.T) {
	planner := NewQueryPlanner(10, 2)

	history := []domain.Message{
		domain.NewMessage(domain.RoleUser, "美国的公共艺术政策"),
		domain.NewMessage(domain.RoleAssistant, "美国的百分比艺术计划……"),
	}

	query := planner.Plan("那在中国呢？", history)

	// 扩展查询包含最近对话内容与原问题
	assert.Contains(t, query, "美国的公共艺术政策")
	assert.Contains(t, query, "美国的百分比艺术计划……")
	assert.Contains(t, query, "那在中国呢？")
}

func TestQueryPlanner_ShortQuestionRecentFirst(t *testing.T) {
	planner := NewQueryPlanner(10, 2)

	history := []domain.Message{
		domain.NewMessage(domain.RoleUser, "较早的问题内容"),
		domain.NewMessage(domain.RoleAssistant, "较早的回答内容"),
		domain.NewMessage(domain.RoleUser, "最近的问题内容"),
		domain.NewMessage(domain.RoleAssistant, "最近的回答内容"),
	}

	query := planner.Plan("为什么？", history)

	// 越新的对话内容排在越前面
	assert.Less(t,
		strings.Index(query, "最近的回答内容"),
		strings.Index(query, "最近的问题内容"),
	)
}

func TestQueryPlanner_ShortQuestionNoHistory(t *testing.T) {
	planner := NewQueryPlanner(10, 2)

	// 没有历史可参考时退回原问题
	assert.Equal(t, "为什么？", planner.Plan("  为什么？  ", nil))
}

func TestQueryPlanner_ContextRoundsLimit(t *testing.T) {
	planner := NewQueryPlanner(10, 1)

	history := []domain.Message{
		domain.NewMessage(domain.RoleUser, "超出参考范围的问题"),
		domain.NewMessage(domain.RoleAssistant, "超出参考范围的回答"),
		domain.NewMessage(domain.RoleUser, "范围内的问题"),
		domain.NewMessage(domain.RoleAssistant, "范围内的回答"),
	}

	query := planner.Plan("继续", history)

	assert.Contains(t, query, "范围内的问题")
	assert.NotContains(t, query, "超出参考范围的问题")
}
