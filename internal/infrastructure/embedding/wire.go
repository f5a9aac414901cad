package embedding

import (
	"github.com/google/wire"

	"github.com/artqa/backend/internal/infrastructure/config"
)

// ProvideClient 根据配置创建 Embedding 客户端
func ProvideClient(manager *config.Manager) *Client {
	cfg := manager.Snapshot().Embedding
	return NewClient(cfg.URL, cfg.APIKey, cfg.Model)
}

// ProviderSet Embedding 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(ProvideClient)
