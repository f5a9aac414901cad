package llm

import (
	"github.com/google/wire"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
)

// ProvideClient 根据配置创建生成服务客户端
func ProvideClient(manager *config.Manager) *Client {
	cfg := manager.Snapshot().Generation
	return NewClient(cfg.URL, cfg.APIKey, cfg.Model)
}

// ProviderSet LLM 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideClient,
	wire.Bind(new(domain.Generator), new(*Client)),
)
