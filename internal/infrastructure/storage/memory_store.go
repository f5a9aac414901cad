package storage

import (
	"log/slog"
	"sync"
	"time"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
	applog "github.com/artqa/backend/internal/infrastructure/log"
)

// globalSessionKey 全局共享历史模式下所有会话 ID 折叠到的键
const globalSessionKey = "global"

// memorySession 单个会话的内存状态，持有自己的锁
type memorySession struct {
	mu      sync.Mutex
	session domain.Session
}

// MemoryStore 进程内会话存储。
// 会话表用读写锁保护，单个会话的读写用会话级锁串行化，
// 不同会话的回合互不阻塞。进程重启后历史丢失。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	manager  *config.Manager
	logger   *slog.Logger
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore(manager *config.Manager) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		manager:  manager,
		logger:   applog.NewModuleLogger("storage", "memory"),
	}
}

// key 根据配置决定会话键：全局模式下所有调用方共享同一份历史
func (s *MemoryStore) key(sessionID string) string {
	if s.manager.Snapshot().Store.IsGlobal() {
		return globalSessionKey
	}
	return sessionID
}

// entry 获取或创建会话状态
func (s *MemoryStore) entry(key string) *memorySession {
	s.mu.RLock()
	ms, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return ms
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok = s.sessions[key]; ok {
		return ms
	}
	now := time.Now()
	ms = &memorySession{
		session: domain.Session{
			ID:        key,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	s.sessions[key] = ms
	return ms
}

// Append 追加消息并应用裁剪策略
func (s *MemoryStore) Append(sessionID string, msg domain.Message) error {
	limits := s.manager.Snapshot().Store.Limits
	msg.Content = domain.TruncateContent(msg.Content, limits.MaxMessageLength)

	ms := s.entry(s.key(sessionID))
	ms.mu.Lock()
	defer ms.mu.Unlock()

	before := len(ms.session.Messages)
	ms.session.Messages = domain.Trim(append(ms.session.Messages, msg), limits)
	ms.session.UpdatedAt = time.Now()

	if removed := before + 1 - len(ms.session.Messages); removed > 0 {
		s.logger.Info("会话历史已裁剪",
			slog.String("session_id", sessionID),
			slog.Int("removed", removed))
	}
	return nil
}

// Get 返回会话的副本
func (s *MemoryStore) Get(sessionID string) (*domain.Session, error) {
	key := s.key(sessionID)

	s.mu.RLock()
	ms, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	copied := ms.session
	copied.Messages = append([]domain.Message(nil), ms.session.Messages...)
	return &copied, nil
}

// Recent 返回最近 maxRounds 轮消息，未知会话返回空切片
func (s *MemoryStore) Recent(sessionID string, maxRounds int) []domain.Message {
	key := s.key(sessionID)

	s.mu.RLock()
	ms, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return []domain.Message{}
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	recent := domain.RecentSuffix(ms.session.Messages, maxRounds)
	return append([]domain.Message(nil), recent...)
}

// Delete 删除会话，幂等
func (s *MemoryStore) Delete(sessionID string) error {
	key := s.key(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// 编译时检查接口实现
var _ domain.Store = (*MemoryStore)(nil)
