package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/artqa/backend/internal/infrastructure/config"
)

// DBFileName 数据库文件名，位于数据目录下
const DBFileName = "artqa.db"

// GetDBPath 获取数据库路径
// 默认 ~/.artqa/artqa.db，可通过数据目录环境变量重定向
func GetDBPath() string {
	return filepath.Join(config.GetDataDir(), DBFileName)
}

// OpenDB 打开数据库连接
func OpenDB() (*sql.DB, error) {
	dbPath := GetDBPath()

	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// 打开数据库连接
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initSessionTables 初始化会话相关表结构
func initSessionTables(db *sql.DB) error {
	createSessionsSQL := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(createSessionsSQL); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	createMessagesSQL := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);`

	if _, err := db.Exec(createMessagesSQL); err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}

	// 创建索引
	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id, id);`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}

	return nil
}
