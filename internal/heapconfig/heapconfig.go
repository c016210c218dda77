// Package heapconfig loads and hot-reloads the heap's tunable thresholds
// from a JSON file, using fsnotify to watch the file for changes. Grounded
// on the teacher's FSNotifyWatcher (internal/runtime/vfs/watch_fsnotify.go):
// same "spawn a goroutine, funnel fsnotify's two channels into our own"
// shape, adapted from a generic filesystem watcher into a single-file
// config reloader.
//
// Only the threshold fields (CycleTriggerThreshold, EvacTriggerThreshold,
// WriteBarrierCollectThreshold, EvacHeadroom) are reloadable — BlockSize
// and LineSize are fixed for the heap's lifetime (spec.md §3); they are not
// part of the file format and always keep runtime.DefaultConfig's values.
package heapconfig

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/orizon-lang/rcimmix/internal/runtime"
)

// fileConfig is the on-disk JSON shape; fields absent from the file are
// left as the existing config's values, so a partial file only updates the
// thresholds it mentions. A field present with value 0 does overwrite.
type fileConfig struct {
	EvacHeadroom                 *int     `json:"evac_headroom,omitempty"`
	CycleTriggerThreshold        *float64 `json:"cycle_trigger_threshold,omitempty"`
	EvacTriggerThreshold         *float64 `json:"evac_trigger_threshold,omitempty"`
	WriteBarrierCollectThreshold *int     `json:"write_barrier_collect_threshold,omitempty"`
}

// Loader watches a config file and exposes the most recently validated
// runtime.Config. An invalid reload is logged and discarded — Current
// keeps returning the last good configuration rather than ever handing
// the mutator a Config that failed Validate.
type Loader struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	current atomic.Pointer[runtime.Config]

	done chan struct{}
}

// NewLoader reads path once (producing an error if it cannot be parsed or
// fails Validate), starts watching it for writes, and returns a Loader
// whose Current() reflects subsequent valid edits.
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	l := &Loader{
		path:   path,
		logger: logger,
		done:   make(chan struct{}),
	}

	cfg, err := loadFile(path, runtime.DefaultConfig())
	if err != nil {
		return nil, err
	}

	l.current.Store(&cfg)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("heapconfig: creating watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("heapconfig: watching %s: %w", path, err)
	}

	l.watcher = w

	go l.loop()

	return l, nil
}

// Current returns the most recently loaded, validated Config.
func (l *Loader) Current() runtime.Config {
	return *l.current.Load()
}

// Close stops the watcher goroutine and releases its file descriptor.
func (l *Loader) Close() error {
	close(l.done)
	return l.watcher.Close()
}

func (l *Loader) loop() {
	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := loadFile(l.path, l.Current())
			if err != nil {
				l.logger.Warn("heapconfig: reload failed, keeping previous config", "path", l.path, "error", err)
				continue
			}

			l.current.Store(&cfg)
			l.logger.Info("heapconfig: reloaded", "path", l.path)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}

			l.logger.Warn("heapconfig: watcher error", "error", err)

		case <-l.done:
			return
		}
	}
}

// loadFile reads and parses path, applying any present fields onto base,
// then validates the result.
func loadFile(path string, base runtime.Config) (runtime.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runtime.Config{}, fmt.Errorf("heapconfig: reading %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return runtime.Config{}, fmt.Errorf("heapconfig: parsing %s: %w", path, err)
	}

	cfg := base

	if fc.EvacHeadroom != nil {
		cfg.EvacHeadroom = *fc.EvacHeadroom
	}

	if fc.CycleTriggerThreshold != nil {
		cfg.CycleTriggerThreshold = *fc.CycleTriggerThreshold
	}

	if fc.EvacTriggerThreshold != nil {
		cfg.EvacTriggerThreshold = *fc.EvacTriggerThreshold
	}

	if fc.WriteBarrierCollectThreshold != nil {
		cfg.WriteBarrierCollectThreshold = *fc.WriteBarrierCollectThreshold
	}

	if err := cfg.Validate(); err != nil {
		return runtime.Config{}, fmt.Errorf("heapconfig: %s failed validation: %w", path, err)
	}

	return cfg, nil
}
