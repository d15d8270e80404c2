// Package watch turns filesystem activity into obfuscation work. A Watcher
// observes one directory and hands each created or modified file to a
// process callback once writes have settled, so a file being copied in is
// processed once rather than on every partial write.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hengadev/obfx"
)

const defaultDebounce = 500 * time.Millisecond

// ProcessFunc handles one settled file.
type ProcessFunc func(ctx context.Context, path string) error

// Config holds configuration for a directory watcher.
type Config struct {
	// Dir is the directory to watch. Required.
	Dir string

	// Extensions limits processing to matching file extensions
	// (e.g. ".csv"). Empty means every file.
	Extensions []string

	// Debounce is how long a file must stay quiet before it is processed.
	// Defaults to 500ms.
	Debounce time.Duration

	// Logger receives watch activity. Defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher observes a directory and debounces change events per file.
type Watcher struct {
	dir        string
	extensions map[string]bool
	debounce   time.Duration
	logger     *slog.Logger
	process    ProcessFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a Watcher that hands settled files to process.
func New(cfg Config, process ProcessFunc) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: watch directory cannot be empty", obfx.ErrInvalidConfiguration)
	}
	if process == nil {
		return nil, fmt.Errorf("%w: process callback cannot be nil", obfx.ErrInvalidConfiguration)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}

	return &Watcher{
		dir:        cfg.Dir,
		extensions: extensions,
		debounce:   debounce,
		logger:     logger,
		process:    process,
		timers:     make(map[string]*time.Timer),
	}, nil
}

// Run watches the directory until ctx is cancelled. It returns ctx.Err()
// on cancellation and an error if the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching directory '%s': %w", w.dir, err)
	}

	w.logger.InfoContext(ctx, "watching directory",
		"dir", w.dir,
		"extensions", len(w.extensions),
		"debounce", w.debounce,
	)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.wants(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "watch error", "error", err)
		}
	}
}

func (w *Watcher) wants(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// schedule arms (or re-arms) the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, exists := w.timers[path]; exists {
		t.Stop()
	}

	p := path
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.logger.InfoContext(ctx, "file settled", "path", p)
		if err := w.process(ctx, p); err != nil {
			w.logger.ErrorContext(ctx, "processing failed", "path", p, "error", err)
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}
