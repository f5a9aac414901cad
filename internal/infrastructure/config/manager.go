package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	applog "github.com/artqa/backend/internal/infrastructure/log"
)

// ConfigFileName 配置文件名，位于数据目录下
const ConfigFileName = "config.yaml"

// Manager 配置管理器：加载默认值并叠加配置文件，支持整体热重载。
// 调用方每次通过 Snapshot 读取当前配置，重载后的新值对后续回合立即生效。
type Manager struct {
	path    string
	current atomic.Pointer[Config]
	logger  *slog.Logger
}

// NewManager 创建配置管理器并完成首次加载。
// 配置文件不存在不是错误：直接使用默认值运行。
func NewManager() (*Manager, error) {
	m := &Manager{
		path:   filepath.Join(GetDataDir(), ConfigFileName),
		logger: applog.NewModuleLogger("config", "manager"),
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Path 配置文件路径
func (m *Manager) Path() string {
	return m.path
}

// Snapshot 当前配置快照。返回的指针指向不可变副本，调用方不得修改。
func (m *Manager) Snapshot() *Config {
	return m.current.Load()
}

// Reload 重新加载配置：默认值 + 配置文件叠加
func (m *Manager) Reload() error {
	cfg := NewConfig()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Info("Config file not found, using defaults",
				"path", m.path,
			)
			m.current.Store(cfg)
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	m.current.Store(cfg)
	m.logger.Info("Config loaded",
		"path", m.path,
		"store_backend", cfg.Store.Backend,
		"store_scope", cfg.Store.Scope,
	)
	return nil
}

// Write 将配置写回文件（创建数据目录）
func (m *Manager) Write(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.current.Store(cfg)
	return nil
}
