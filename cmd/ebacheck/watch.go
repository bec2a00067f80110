package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"ebacheck/internal/logger"
)

const (
	watchDebounce = 300 * time.Millisecond
	// не чаще одного прогона в секунду, даже если файл пишут постоянно
	watchMinInterval = time.Second
)

// watchAndValidate validates once and again after every change to the
// input or the profile, until ctx ends. Fatal errors of a single run are
// reported and watching continues.
func watchAndValidate(ctx context.Context, req validateRequest, stdout, stderr io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]bool)
	for _, p := range []string{req.input, req.profilePath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		tracked[abs] = true
		// каталог, а не файл: редакторы сохраняют через rename
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}

	// прогресс-UI в режиме наблюдения не нужен
	req.ui = uiModeOff
	limiter := rate.NewLimiter(rate.Every(watchMinInterval), 1)
	run := func() {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		code, err := runValidation(ctx, req, stdout, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "ebacheck: %v\n", err)
		}
		fmt.Fprintf(stderr, "-- %s: exit %d, watching for changes\n", time.Now().Format(time.TimeOnly), code)
	}
	run()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event, tracked) {
				continue
			}
			logger.Infow("watch: change detected", "file", event.Name, "op", event.Op.String())
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch: watcher error", "error", err)
		case <-debounce:
			debounce = nil
			run()
		}
	}
}

func isRelevant(event fsnotify.Event, tracked map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return tracked[abs]
}
