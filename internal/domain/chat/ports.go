package chat

import "context"

// Searcher 检索协作方契约：按相关度降序返回文献记录。
// 适配器不做重排序；空结果集是合法输出。
type Searcher interface {
	Search(ctx context.Context, query string, k int, scoreThreshold float32) ([]RetrievedRecord, error)
}

// SamplingConfig 生成采样配置，字段与生成端识别的采样键一一对应。
// 生成端会忽略不识别的键。
type SamplingConfig struct {
	MaxNewTokens      int     `json:"max_new_tokens" yaml:"max_new_tokens"`
	MinNewTokens      int     `json:"min_new_tokens" yaml:"min_new_tokens"`
	Temperature       float64 `json:"temperature" yaml:"temperature"`
	TopP              float64 `json:"top_p" yaml:"top_p"`
	TopK              int     `json:"top_k" yaml:"top_k"`
	RepetitionPenalty float64 `json:"repetition_penalty" yaml:"repetition_penalty"`
	DoSample          bool    `json:"do_sample" yaml:"do_sample"`
	NumBeams          int     `json:"num_beams" yaml:"num_beams"`
	LengthPenalty     float64 `json:"length_penalty" yaml:"length_penalty"`
}

// DefaultSamplingConfig 默认采样配置
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		MaxNewTokens:      800,
		MinNewTokens:      20,
		Temperature:       0.7,
		TopP:              0.9,
		TopK:              40,
		RepetitionPenalty: 1.05,
		DoSample:          true,
		NumBeams:          1,
		LengthPenalty:     1.0,
	}
}

// Generator 生成协作方契约：给定完整提示词与采样配置，返回原始解码文本。
// 失败以 GenerationError 形式向上传播。
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error)
}

// Store 会话存储契约。两种部署形态共用同一接口：
// 按会话 ID 隔离的多用户存储，以及所有调用方共享一份历史的全局存储
// （后者只是把所有 ID 折叠到同一个键）。
// 每次 Append 之后由实现执行 Limits 定义的裁剪策略，裁剪静默进行，不报错。
type Store interface {
	// Append 追加一条消息并应用裁剪策略
	Append(sessionID string, msg Message) error
	// Get 返回完整会话；未知 ID 返回 ErrSessionNotFound
	Get(sessionID string) (*Session, error)
	// Recent 返回最近 maxRounds 轮消息（至多 maxRounds*2 条）；
	// 未知 ID 返回空切片而非错误
	Recent(sessionID string, maxRounds int) []Message
	// Delete 删除会话，幂等：删除不存在的会话同样成功
	Delete(sessionID string) error
}
