package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
)

// newTestManager 在临时数据目录上创建配置管理器
func newTestManager(t *testing.T) *config.Manager {
	t.Helper()

	config.ResetDataDir()
	t.Setenv(config.EnvDataDir, t.TempDir())
	t.Cleanup(config.ResetDataDir)

	manager, err := config.NewManager()
	require.NoError(t, err)
	return manager
}

// storeFactories 两种后端共享同一契约，测试对两者同时运行
func storeFactories(t *testing.T, manager *config.Manager) map[string]domain.Store {
	t.Helper()

	db, err := OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqliteStore, err := NewSQLiteStore(db, manager)
	require.NoError(t, err)

	return map[string]domain.Store{
		"memory": NewMemoryStore(manager),
		"sqlite": sqliteStore,
	}
}

func TestStore_AppendAndGet(t *testing.T) {
	manager := newTestManager(t)

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append("s1", domain.NewMessage(domain.RoleUser, "问题")))
			require.NoError(t, store.Append("s1", domain.NewMessage(domain.RoleAssistant, "回答")))

			session, err := store.Get("s1")
			require.NoError(t, err)
			require.Len(t, session.Messages, 2)
			assert.Equal(t, domain.RoleUser, session.Messages[0].Role)
			assert.Equal(t, "问题", session.Messages[0].Content)
			assert.Equal(t, domain.RoleAssistant, session.Messages[1].Role)
		})
	}
}

func TestStore_GetUnknownSession(t *testing.T) {
	manager := newTestManager(t)

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing-" + name)
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		})
	}
}

func TestStore_RecentUnknownSession(t *testing.T) {
	manager := newTestManager(t)

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			// 未知会话返回空切片而非错误
			assert.Empty(t, store.Recent("missing-"+name, 30))
		})
	}
}

func TestStore_RecentLimitsRounds(t *testing.T) {
	manager := newTestManager(t)

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				require.NoError(t, store.Append("s1", domain.NewMessage(domain.RoleUser, "问")))
				require.NoError(t, store.Append("s1", domain.NewMessage(domain.RoleAssistant, "答")))
			}

			recent := store.Recent("s1", 2)
			assert.Len(t, recent, 4)
		})
	}
}

func TestStore_DeleteIdempotent(t *testing.T) {
	manager := newTestManager(t)

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append("s1", domain.NewMessage(domain.RoleUser, "问题")))
			require.NoError(t, store.Delete("s1"))
			// 重复删除同样成功
			require.NoError(t, store.Delete("s1"))

			_, err := store.Get("s1")
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		})
	}
}

func TestStore_TruncatesOversizedMessage(t *testing.T) {
	manager := newTestManager(t)

	cfg := *manager.Snapshot()
	cfg.Store.Limits.MaxMessageLength = 200
	require.NoError(t, manager.Write(&cfg))

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append("s1", domain.NewMessage(domain.RoleUser, strings.Repeat("长", 500))))

			session, err := store.Get("s1")
			require.NoError(t, err)
			require.Len(t, session.Messages, 1)
			content := session.Messages[0].Content
			assert.True(t, strings.HasSuffix(content, domain.TruncationMarker))
			assert.Equal(t, strings.Repeat("长", 100), strings.TrimSuffix(content, domain.TruncationMarker))
		})
	}
}

func TestStore_TrimsMessageCount(t *testing.T) {
	manager := newTestManager(t)

	cfg := *manager.Snapshot()
	cfg.Store.Limits.MaxMessages = 6
	require.NoError(t, manager.Write(&cfg))

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				role := domain.RoleUser
				if i%2 == 1 {
					role = domain.RoleAssistant
				}
				require.NoError(t, store.Append("s1", domain.NewMessage(role, "消息")))
			}

			session, err := store.Get("s1")
			require.NoError(t, err)
			assert.Len(t, session.Messages, 6)
		})
	}
}

func TestStore_GlobalScopeCollapsesSessions(t *testing.T) {
	manager := newTestManager(t)

	cfg := *manager.Snapshot()
	cfg.Store.Scope = "global"
	require.NoError(t, manager.Write(&cfg))

	for name, store := range storeFactories(t, manager) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append("caller-a", domain.NewMessage(domain.RoleUser, "第一问")))
			require.NoError(t, store.Append("caller-b", domain.NewMessage(domain.RoleAssistant, "第一答")))

			// 不同调用方看到同一份历史
			session, err := store.Get("caller-c")
			require.NoError(t, err)
			assert.Len(t, session.Messages, 2)
		})
	}
}
