package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
	applog "github.com/artqa/backend/internal/infrastructure/log"
)

// AskResult 一次问答回合的结果
type AskResult struct {
	// Answer 提取后的最终回答
	Answer string `json:"answer"`
	// SessionID 本回合归属的会话，新会话时为服务端生成的 ID
	SessionID string `json:"session_id"`
	// Retrieved 本回合命中的文献条数
	Retrieved int `json:"retrieved"`
}

// Service 问答编排服务。
// 串联查询规划、向量检索、提示词组装、生成与历史维护，
// 是一次问答回合的唯一入口。
type Service struct {
	store     domain.Store
	searcher  domain.Searcher
	generator domain.Generator
	counter   *TokenCounter
	assembler *PromptAssembler
	manager   *config.Manager
	logger    *slog.Logger
}

// NewService 创建问答编排服务
func NewService(
	store domain.Store,
	searcher domain.Searcher,
	generator domain.Generator,
	counter *TokenCounter,
	manager *config.Manager,
) *Service {
	return &Service{
		store:     store,
		searcher:  searcher,
		generator: generator,
		counter:   counter,
		assembler: NewPromptAssembler(),
		manager:   manager,
		logger:    applog.NewModuleLogger("application", "chat"),
	}
}

// Ask 执行一次完整的问答回合。
// 空问题直接拒绝；sessionID 为空时生成新会话。
// 检索失败在非必需模式下降级为无文献继续回答；
// 生成失败时整个回合作废，历史不写入。
func (s *Service) Ask(ctx context.Context, sessionID, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = applog.WithSessionID(ctx, sessionID)

	cfg := s.manager.Snapshot()
	history := s.store.Recent(sessionID, cfg.Store.PromptRounds)

	// 1. 规划检索查询
	planner := NewQueryPlanner(cfg.Planner.ShortQueryThreshold, cfg.Planner.ContextRounds)
	query := planner.Plan(question, history)
	if query != question {
		s.logger.InfoContext(ctx, "短问题已用对话上下文扩展检索查询",
			slog.Int("query_length", len([]rune(query))))
	}

	// 2. 向量检索
	records, err := s.searcher.Search(ctx, query, cfg.Retrieval.K, cfg.Retrieval.ScoreThreshold)
	if err != nil {
		if cfg.Retrieval.Required {
			return nil, domain.NewRetrievalError(err)
		}
		s.logger.WarnContext(ctx, "检索失败，降级为无文献回答", slog.Any("error", err))
		records = nil
	}
	s.logger.InfoContext(ctx, "检索完成", slog.Int("hits", len(records)))

	// 3. 组装提示词并控制输入 Token 预算
	formatter := NewContextFormatter(cfg.Retrieval.PreviewLength)
	literature := formatter.Format(records)
	prompt, history := s.fitPrompt(ctx, question, literature, history, cfg.Generation.MaxInputTokens)

	// 4. 生成回答
	raw, err := s.generator.Generate(ctx, prompt, cfg.Generation.Sampling)
	if err != nil {
		return nil, domain.NewGenerationError(err)
	}
	answer := ExtractAnswer(raw)

	// 5. 生成成功后才写入历史
	if err := s.store.Append(sessionID, domain.NewMessage(domain.RoleUser, question)); err != nil {
		return nil, fmt.Errorf("追加用户消息失败: %w", err)
	}
	if err := s.store.Append(sessionID, domain.NewMessage(domain.RoleAssistant, answer)); err != nil {
		return nil, fmt.Errorf("追加助手消息失败: %w", err)
	}

	return &AskResult{
		Answer:    answer,
		SessionID: sessionID,
		Retrieved: len(records),
	}, nil
}

// fitPrompt 组装提示词并确保不超过输入 Token 预算。
// 超出预算时从最旧一轮开始丢弃历史并重新组装，
// 历史丢尽后即便仍超预算也按原样返回，由生成侧截断。
func (s *Service) fitPrompt(ctx context.Context, question, literature string, history []domain.Message, maxInputTokens int) (string, []domain.Message) {
	prompt := s.assembler.Assemble(question, literature, history)
	if maxInputTokens <= 0 || s.counter == nil {
		return prompt, history
	}

	for s.counter.Count(prompt) > maxInputTokens && len(history) > 0 {
		drop := 2
		if len(history) < drop {
			drop = len(history)
		}
		history = history[drop:]
		prompt = s.assembler.Assemble(question, literature, history)
		s.logger.InfoContext(ctx, "提示词超出输入预算，丢弃最旧一轮历史",
			slog.Int("remaining_messages", len(history)))
	}
	return prompt, history
}

// History 返回完整会话，未知会话 ID 返回 ErrSessionNotFound
func (s *Service) History(sessionID string) (*domain.Session, error) {
	return s.store.Get(sessionID)
}

// ClearHistory 清空会话历史，对不存在的会话幂等
func (s *Service) ClearHistory(sessionID string) error {
	return s.store.Delete(sessionID)
}
