package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/wire"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
)

// ProvideDB 提供数据库连接
func ProvideDB() (*sql.DB, error) {
	return OpenDB()
}

// ProvideStore 根据配置选择会话存储后端
func ProvideStore(manager *config.Manager, db *sql.DB) (domain.Store, error) {
	backend := manager.Snapshot().Store.Backend
	switch backend {
	case "sqlite":
		return NewSQLiteStore(db, manager)
	case "", "memory":
		return NewMemoryStore(manager), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,    // 提供数据库连接
	ProvideStore, // 会话存储（memory 或 sqlite）
)
