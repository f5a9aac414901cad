package chat

import "github.com/google/wire"

// ProviderSet 问答应用层依赖注入
var ProviderSet = wire.NewSet(
	NewTokenCounter,
	NewService,
)
