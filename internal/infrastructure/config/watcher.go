package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "github.com/artqa/backend/internal/infrastructure/log"
)

// reloadDebounce 重载防抖延迟：编辑器保存往往触发多个连续事件
const reloadDebounce = 500 * time.Millisecond

// Watcher 配置文件监听器：配置文件被修改时热重载，
// 使采样参数、检索参数等可在不重启服务的情况下调整。
type Watcher struct {
	manager *Manager
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWatcher 创建配置监听器
func NewWatcher(manager *Manager) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		manager: manager,
		watcher: fsWatcher,
		logger:  applog.NewModuleLogger("config", "watcher"),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start 启动监听。监听配置文件所在目录而非文件本身，
// 以捕获原子替换式写入（rename + create）。
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.manager.Path())
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.logger.Info("Watching config file",
		"path", w.manager.Path(),
	)

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop 停止监听
func (w *Watcher) Stop() error {
	close(w.stopCh)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != ConfigFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error",
				"error", err,
			)

		case <-w.stopCh:
			return
		}
	}
}

// scheduleReload 防抖后执行重载
func (w *Watcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(reloadDebounce, func() {
		if err := w.manager.Reload(); err != nil {
			w.logger.Error("Config reload failed, keeping previous config",
				"error", err,
			)
			return
		}
		w.logger.Info("Config reloaded")
	})
}
