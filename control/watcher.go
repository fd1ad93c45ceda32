// control/watcher.go
// Author: momentics <momentics@gmail.com>
//
// Config file watcher. Editors and provisioning tools replace config
// files instead of rewriting them in place, so the watcher follows the
// parent directory and re-reads the file on any write or create event
// naming it. Reads are debounced; a malformed file keeps the previous
// configuration.

package control

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 50 * time.Millisecond

// LoadFunc reads a config file into store keys.
type LoadFunc func(path string) (map[string]any, error)

// FileWatcher applies config file changes to a ConfigStore.
type FileWatcher struct {
	path  string
	store *ConfigStore
	load  LoadFunc
	fsw   *fsnotify.Watcher

	reloads  atomic.Uint64
	failures atomic.Uint64
}

// NewFileWatcher starts watching the directory holding path.
func NewFileWatcher(path string, store *ConfigStore, load LoadFunc) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config watcher %s: %w", path, err)
	}
	return &FileWatcher{path: path, store: store, load: load, fsw: fsw}, nil
}

// Run serves filesystem events until the context ends.
func (fw *FileWatcher) Run(ctx context.Context) error {
	var pending *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(fw.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(reloadDebounce)
			} else {
				pending.Reset(reloadDebounce)
			}
			fire = pending.C
		case <-fire:
			fire = nil
			fw.reload()
		case _, ok := <-fw.fsw.Errors:
			if !ok {
				return nil
			}
			fw.failures.Add(1)
		}
	}
}

func (fw *FileWatcher) reload() {
	values, err := fw.load(fw.path)
	if err != nil {
		fw.failures.Add(1)
		return
	}
	fw.store.SetConfig(values)
	fw.reloads.Add(1)
}

// Reloads reports successful reload count.
func (fw *FileWatcher) Reloads() uint64 { return fw.reloads.Load() }

// Failures reports failed reload attempts and watch errors.
func (fw *FileWatcher) Failures() uint64 { return fw.failures.Load() }

// Close stops the underlying filesystem watcher.
func (fw *FileWatcher) Close() error { return fw.fsw.Close() }
