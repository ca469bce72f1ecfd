package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"coinbt/internal/logger"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watch 监听 path 及其 include 链上的文件，变化后重新 Load 并回调 onChange。
// 回调在监听 goroutine 中串行执行；加载失败只记录日志。阻塞到 ctx 取消。
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if onChange == nil {
		return fmt.Errorf("config watch requires a callback")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	tracked, err := watchTargets(w, path)
	if err != nil {
		return err
	}
	logger.Infof("config: 监听 %d 个配置文件变化", len(tracked))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !tracked[filepath.Clean(evt.Name)] {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("config watch error: %v", err)
		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				logger.Errorf("config reload failed (%s): %v", path, err)
				continue
			}
			if next, err := watchTargets(w, path); err == nil {
				tracked = next
			}
			onChange(cfg)
		}
	}
}

// watchTargets 监听文件所在目录，以兼容编辑器的“写临时文件再改名”保存方式。
func watchTargets(w *fsnotify.Watcher, path string) (map[string]bool, error) {
	files, err := configFiles(path)
	if err != nil {
		return nil, err
	}
	tracked := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		tracked[filepath.Clean(f)] = true
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return tracked, nil
}
