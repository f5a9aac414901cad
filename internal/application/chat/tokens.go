package chat

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// 在包初始化时设置离线加载器，避免运行期下载编码文件
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenCounter 使用 tiktoken 精确计算提示词的 Token 数量
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

// counterInstance 单例实例
var (
	counterInstance *TokenCounter
	counterOnce     sync.Once
	counterErr      error
)

// NewTokenCounter 获取 TokenCounter 单例
// 使用单例模式避免重复加载编码文件
func NewTokenCounter() (*TokenCounter, error) {
	counterOnce.Do(func() {
		// 使用 cl100k_base 编码
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			counterErr = err
			return
		}
		counterInstance = &TokenCounter{
			encoding: enc,
		}
	})

	if counterErr != nil {
		return nil, counterErr
	}
	return counterInstance, nil
}

// Count 计算文本的 Token 数量
func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	tokens := c.encoding.Encode(text, nil, nil)
	return len(tokens)
}
