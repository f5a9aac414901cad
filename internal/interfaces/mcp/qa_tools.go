package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskQuestionInput 问答工具输入
type AskQuestionInput struct {
	Question  string `json:"question" jsonschema:"The question to ask (required)"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Session ID for multi-turn conversation, omit to start a new session"`
}

// AskQuestionOutput 问答工具输出
type AskQuestionOutput struct {
	Answer    string `json:"answer" jsonschema:"The generated answer"`
	SessionID string `json:"session_id" jsonschema:"Session ID, pass it back for follow-up questions"`
	Retrieved int    `json:"retrieved" jsonschema:"Number of retrieved literature fragments"`
}

// SearchLiteratureInput 文献检索工具输入
type SearchLiteratureInput struct {
	Query string `json:"query" jsonschema:"Natural language search query (required)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results, defaults to server config"`
}

// SearchLiteratureOutput 文献检索工具输出
type SearchLiteratureOutput struct {
	Results []*LiteratureResult `json:"results" jsonschema:"Literature fragments ordered by similarity"`
	Total   int                 `json:"total" jsonschema:"Total number of results"`
}

// LiteratureResult 单条文献检索结果
type LiteratureResult struct {
	Content string  `json:"content" jsonschema:"Fragment text"`
	Source  string  `json:"source" jsonschema:"Source document name"`
	Page    int     `json:"page,omitempty" jsonschema:"Page number, omitted when unknown"`
	Score   float32 `json:"score" jsonschema:"Similarity score"`
}

// askQuestionTool 问答工具
func (s *MCPServer) askQuestionTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AskQuestionInput,
) (*mcp.CallToolResult, AskQuestionOutput, error) {
	if input.Question == "" {
		return nil, AskQuestionOutput{}, fmt.Errorf("question 参数是必需的")
	}

	result, err := s.chatService.Ask(ctx, input.SessionID, input.Question)
	if err != nil {
		return nil, AskQuestionOutput{}, fmt.Errorf("问答处理失败: %w", err)
	}

	output := AskQuestionOutput{
		Answer:    result.Answer,
		SessionID: result.SessionID,
		Retrieved: result.Retrieved,
	}
	return nil, output, nil
}

// searchLiteratureTool 文献检索工具
func (s *MCPServer) searchLiteratureTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchLiteratureInput,
) (*mcp.CallToolResult, SearchLiteratureOutput, error) {
	if input.Query == "" {
		return nil, SearchLiteratureOutput{}, fmt.Errorf("query 参数是必需的")
	}

	cfg := s.manager.Snapshot().Retrieval
	limit := input.Limit
	if limit <= 0 || limit > cfg.K {
		limit = cfg.K
	}

	records, err := s.searcher.Search(ctx, input.Query, limit, cfg.ScoreThreshold)
	if err != nil {
		return nil, SearchLiteratureOutput{}, fmt.Errorf("文献检索失败: %w", err)
	}

	results := make([]*LiteratureResult, 0, len(records))
	for _, rec := range records {
		result := &LiteratureResult{
			Content: rec.Content,
			Source:  rec.SourceLabel,
			Score:   rec.Score,
		}
		if rec.HasPage() {
			result.Page = rec.Page
		}
		results = append(results, result)
	}

	output := SearchLiteratureOutput{
		Results: results,
		Total:   len(results),
	}
	return nil, output, nil
}
