// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the driftchat configuration.
package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk and delivers the
// new configuration to a callback. Editors replace files with rename+create,
// so the parent directory is watched rather than the file itself.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	log      zerolog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending *time.Timer
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching path and calls onChange with every valid reload.
// Invalid intermediate states (half-written files) are logged and skipped.
func Watch(path string, onChange func(*Config), log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		watcher:  fsw,
		onChange: onChange,
		log:      log.With().Str("component", "config-watcher").Logger(),
		debounce: 250 * time.Millisecond,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
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
			w.log.Warn().Err(err).Msg("config watch error")
		}
	}
}

// scheduleReload coalesces the burst of events a single save produces into
// one reload after the debounce window.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	cfg, err := LoadFrom(w.path)
	if err != nil {
		w.log.Warn().Err(err).Msg("config reload skipped")
		return
	}
	w.log.Info().Msg("config reloaded")
	w.onChange(cfg)
}
