package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lanes2svg/internal/logging"
)

const debounceDelay = 100 * time.Millisecond

// watchFiles calls onChange after any of paths is written or recreated,
// waiting for debounceDelay of quiet first. It blocks until ctx is done.
// onChange never runs concurrently with itself, and a call in progress
// finishes before watchFiles returns.
func watchFiles(ctx context.Context, paths []string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so editors that replace files are still seen.
	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
		dirs[dir] = true
	}

	var (
		mu            sync.Mutex
		pending       sync.WaitGroup
		debounceTimer *time.Timer
	)
	fire := func() {
		defer pending.Done()
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		onChange()
	}
	// A stopped timer never runs fire, so its Done is ours to call.
	stopTimer := func() {
		if debounceTimer != nil && debounceTimer.Stop() {
			pending.Done()
		}
	}
	defer func() {
		stopTimer()
		pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logging.Debug("file changed", "path", event.Name, "op", event.Op.String())

			stopTimer()
			pending.Add(1)
			debounceTimer = time.AfterFunc(debounceDelay, fire)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}
