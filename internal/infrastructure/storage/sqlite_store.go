package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
	applog "github.com/artqa/backend/internal/infrastructure/log"
)

// SQLiteStore 持久化会话存储。
// 与内存存储遵循同一契约，历史在进程重启后保留。
// SQLite 写并发能力有限，所有写操作用单锁串行化。
type SQLiteStore struct {
	mu      sync.Mutex
	db      *sql.DB
	manager *config.Manager
	logger  *slog.Logger
}

// NewSQLiteStore 创建 SQLite 会话存储并初始化表结构
func NewSQLiteStore(db *sql.DB, manager *config.Manager) (*SQLiteStore, error) {
	if err := initSessionTables(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{
		db:      db,
		manager: manager,
		logger:  applog.NewModuleLogger("storage", "sqlite"),
	}, nil
}

// key 根据配置决定会话键：全局模式下所有调用方共享同一份历史
func (s *SQLiteStore) key(sessionID string) string {
	if s.manager.Snapshot().Store.IsGlobal() {
		return globalSessionKey
	}
	return sessionID
}

// Append 追加消息并应用裁剪策略
func (s *SQLiteStore) Append(sessionID string, msg domain.Message) error {
	limits := s.manager.Snapshot().Store.Limits
	msg.Content = domain.TruncateContent(msg.Content, limits.MaxMessageLength)

	key := s.key(sessionID)
	now := time.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsertSQL := `
		INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`
	if _, err := tx.Exec(upsertSQL, key, now, now); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	insertSQL := `
		INSERT INTO messages (session_id, role, content, timestamp)
		VALUES (?, ?, ?, ?)`
	if _, err := tx.Exec(insertSQL, key, string(msg.Role), msg.Content, msg.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if err := s.trimLocked(tx, key, limits); err != nil {
		return err
	}

	return tx.Commit()
}

// trimLocked 在事务内应用裁剪策略：
// 读出全部消息，计算应保留的后缀，删除其余最旧的行
func (s *SQLiteStore) trimLocked(tx *sql.Tx, key string, limits domain.Limits) error {
	rows, err := tx.Query(`SELECT id, content FROM messages WHERE session_id = ? ORDER BY id ASC`, key)
	if err != nil {
		return fmt.Errorf("failed to query messages for trim: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var messages []domain.Message
	for rows.Next() {
		var id int64
		var content string
		if err := rows.Scan(&id, &content); err != nil {
			return fmt.Errorf("failed to scan message row: %w", err)
		}
		ids = append(ids, id)
		messages = append(messages, domain.Message{Content: content})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate message rows: %w", err)
	}

	kept := domain.Trim(messages, limits)
	removed := len(messages) - len(kept)
	if removed <= 0 {
		return nil
	}

	// Trim 只从最旧端移除，保留的一定是末尾后缀
	cutoff := ids[removed-1]
	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ? AND id <= ?`, key, cutoff); err != nil {
		return fmt.Errorf("failed to delete trimmed messages: %w", err)
	}

	s.logger.Info("会话历史已裁剪",
		slog.String("session_id", key),
		slog.Int("removed", removed))
	return nil
}

// Get 返回完整会话，未知会话返回 ErrSessionNotFound
func (s *SQLiteStore) Get(sessionID string) (*domain.Session, error) {
	key := s.key(sessionID)

	var createdAt, updatedAt int64
	err := s.db.QueryRow(`SELECT created_at, updated_at FROM sessions WHERE id = ?`, key).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	messages, err := s.loadMessages(key)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		ID:        key,
		Messages:  messages,
		CreatedAt: time.UnixMilli(createdAt),
		UpdatedAt: time.UnixMilli(updatedAt),
	}, nil
}

// Recent 返回最近 maxRounds 轮消息，未知会话返回空切片
func (s *SQLiteStore) Recent(sessionID string, maxRounds int) []domain.Message {
	messages, err := s.loadMessages(s.key(sessionID))
	if err != nil {
		s.logger.Warn("读取会话历史失败", slog.Any("error", err))
		return []domain.Message{}
	}
	return domain.RecentSuffix(messages, maxRounds)
}

// loadMessages 按写入顺序读出会话的全部消息
func (s *SQLiteStore) loadMessages(key string) ([]domain.Message, error) {
	rows, err := s.db.Query(`
		SELECT role, content, timestamp FROM messages
		WHERE session_id = ? ORDER BY id ASC`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var role, content string
		var timestamp int64
		if err := rows.Scan(&role, &content, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, domain.Message{
			Role:      domain.Role(role),
			Content:   content,
			Timestamp: time.UnixMilli(timestamp),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}

// Delete 删除会话及其全部消息，幂等
func (s *SQLiteStore) Delete(sessionID string) error {
	key := s.key(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, key); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return tx.Commit()
}

// 编译时检查接口实现
var _ domain.Store = (*SQLiteStore)(nil)
