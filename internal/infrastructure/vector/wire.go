package vector

import (
	"github.com/google/wire"

	domain "github.com/artqa/backend/internal/domain/chat"
)

// ProviderSet Vector 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewSearcher,
	wire.Bind(new(domain.Searcher), new(*Searcher)),
)
