package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/log"
)

// Client 文本生成服务客户端。
// 生成端单卡部署且不支持并发推理，Generate 用容量为 1 的信号量
// 把请求串行化，同一时刻进程内只有一个生成请求在途。
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger

	// sem 串行化生成请求，排队可被上下文取消
	sem chan struct{}
}

// GenerateRequest 生成请求，采样参数平铺在请求体顶层
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	domain.SamplingConfig
}

// GenerateResponse 生成响应
type GenerateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewClient 创建生成服务客户端
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			// 生成耗时受 max_new_tokens 影响，超时放宽
			Timeout: 300 * time.Second,
		},
		logger: log.NewModuleLogger("llm", "client"),
		sem:    make(chan struct{}, 1),
	}
}

// Generate 发送提示词并返回原始解码文本
func (c *Client) Generate(ctx context.Context, prompt string, cfg domain.SamplingConfig) (string, error) {
	// 排队等待在途生成结束，上下文取消时立即放弃排队
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-c.sem }()

	reqBody := GenerateRequest{
		Prompt:         prompt,
		Model:          c.model,
		SamplingConfig: cfg,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/generate", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	c.logger.Debug("Sending generation request",
		"url", url,
		"model", c.model,
		"prompt_length", len(prompt),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := c.readResponseBody(resp)
		return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, body)
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	c.logger.Info("Generation successful",
		"model", c.model,
		"elapsed", time.Since(start).String(),
		"tokens", genResp.Usage.TotalTokens,
	)

	return genResp.Text, nil
}

// TestConnection 测试生成服务连接
func (c *Client) TestConnection(ctx context.Context) error {
	cfg := domain.DefaultSamplingConfig()
	cfg.MaxNewTokens = 8
	cfg.MinNewTokens = 1

	c.logger.Debug("Testing generation service connection",
		"base_url", c.baseURL,
		"model", c.model,
	)

	if _, err := c.Generate(ctx, "测试", cfg); err != nil {
		return fmt.Errorf("generation connection test failed: %w", err)
	}

	c.logger.Info("Generation connection test successful",
		"model", c.model,
	)
	return nil
}

// readResponseBody 读取响应体
func (c *Client) readResponseBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// 编译时检查接口实现
var _ domain.Generator = (*Client)(nil)
