package config

import (
	"github.com/artqa/backend/internal/domain/chat"
)

// Config 应用配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Planner    PlannerConfig    `yaml:"planner"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTPPort 固定端口，同时用于单例锁
	HTTPPort string `yaml:"http_port"`
	// CookieMaxAge 会话 Cookie 有效期（秒）
	CookieMaxAge int `yaml:"cookie_max_age"`
}

// StoreConfig 会话存储配置
type StoreConfig struct {
	// Backend 存储后端：memory 或 sqlite
	Backend string `yaml:"backend"`
	// Scope 历史归属：session（按会话 ID 隔离）或 global（所有调用方共享一份历史）
	Scope string `yaml:"scope"`
	// PromptRounds 喂给模型的历史轮数上限，独立于存储自身的保留上限
	PromptRounds int `yaml:"prompt_rounds"`
	// Limits 存储保留上限
	Limits chat.Limits `yaml:"limits"`
}

// IsGlobal 是否为全局共享历史
func (c *StoreConfig) IsGlobal() bool {
	return c.Scope == "global"
}

// PlannerConfig 检索查询规划配置
type PlannerConfig struct {
	// ShortQueryThreshold 短问题阈值（字符数，按 rune 计）：低于该长度的问题
	// 视为依赖上下文的追问，用最近对话内容扩展检索查询
	ShortQueryThreshold int `yaml:"short_query_threshold"`
	// ContextRounds 扩展查询时参考的最近对话轮数
	ContextRounds int `yaml:"context_rounds"`
}

// RetrievalConfig 检索配置
type RetrievalConfig struct {
	// Host Qdrant 地址
	Host string `yaml:"host"`
	// GRPCPort Qdrant gRPC 端口
	GRPCPort int `yaml:"grpc_port"`
	// Collection 文献集合名
	Collection string `yaml:"collection"`
	// VectorSize 向量维度
	VectorSize uint64 `yaml:"vector_size"`
	// K 检索文档数量
	K int `yaml:"k"`
	// ScoreThreshold 相似度阈值，低于该分数的结果被检索端过滤
	ScoreThreshold float32 `yaml:"score_threshold"`
	// Required 为 true 时检索失败使整个回合失败；
	// 否则回合以空文献块继续（默认）
	Required bool `yaml:"required"`
	// PreviewLength 文献片段预览长度（rune）
	PreviewLength int `yaml:"preview_length"`
}

// GenerationConfig 生成配置
type GenerationConfig struct {
	// URL 生成服务地址
	URL string `yaml:"url"`
	// APIKey 生成服务密钥
	APIKey string `yaml:"api_key"`
	// Model 模型名称
	Model string `yaml:"model"`
	// MaxInputTokens 提示词 token 上限，超限时从最旧端丢弃历史轮次
	MaxInputTokens int `yaml:"max_input_tokens"`
	// Sampling 采样参数，可热更新
	Sampling chat.SamplingConfig `yaml:"sampling"`
}

// EmbeddingConfig 嵌入服务配置
type EmbeddingConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// NewConfig 创建配置（默认值）
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:     ":8000",
			CookieMaxAge: 86400,
		},
		Store: StoreConfig{
			Backend:      "memory",
			Scope:        "session",
			PromptRounds: 30,
			Limits:       chat.DefaultLimits(),
		},
		Planner: PlannerConfig{
			ShortQueryThreshold: 10,
			ContextRounds:       2,
		},
		Retrieval: RetrievalConfig{
			Host:           "localhost",
			GRPCPort:       6334,
			Collection:     "academic_papers",
			VectorSize:     1024,
			K:              12,
			ScoreThreshold: 0.4,
			Required:       false,
			PreviewLength:  800,
		},
		Generation: GenerationConfig{
			URL:            "http://localhost:8080",
			Model:          "qwen3-8b-art",
			MaxInputTokens: 2048,
			Sampling:       chat.DefaultSamplingConfig(),
		},
		Embedding: EmbeddingConfig{
			URL:   "http://localhost:11434",
			Model: "deepseek-r1:1.5b",
		},
	}
}
