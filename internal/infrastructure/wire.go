package infrastructure

import (
	"github.com/google/wire"

	"github.com/artqa/backend/internal/infrastructure/config"
	"github.com/artqa/backend/internal/infrastructure/embedding"
	"github.com/artqa/backend/internal/infrastructure/llm"
	"github.com/artqa/backend/internal/infrastructure/storage"
	"github.com/artqa/backend/internal/infrastructure/vector"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	embedding.ProviderSet,
	vector.ProviderSet,
	llm.ProviderSet,
)
