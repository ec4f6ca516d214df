package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// WatchConfig configures statement file watching.
type WatchConfig struct {
	// Patterns are the statement file globs to watch.
	Patterns []string `yaml:"patterns" json:"patterns"`

	// DebounceDelay is how long to collect changes before reporting them.
	DebounceDelay string `yaml:"debounce_delay" json:"debounce_delay"`
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c WatchConfig) GetDebounceDelay() time.Duration {
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// Change is one debounced batch of statement file changes.
type Change struct {
	// Modified lists files created or changed, sorted.
	Modified []string
	// Removed lists files deleted or renamed away, sorted.
	Removed []string
}

// Watcher reports changes to files matching its patterns.
type Watcher struct {
	config   WatchConfig
	patterns []string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events chan Change
}

// NewWatcher creates a watcher. Patterns are anchored to absolute paths.
func NewWatcher(config WatchConfig, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	patterns := make([]string, 0, len(config.Patterns))
	for _, p := range config.Patterns {
		abs := p
		var err error
		if containsGlob(p) {
			abs, err = makeAbsolutePattern(p)
		} else {
			abs, err = filepath.Abs(p)
		}
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, filepath.ToSlash(abs))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:   config,
		patterns: patterns,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan Change, 16),
	}, nil
}

// Events returns the channel of debounced changes. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Change {
	return w.events
}

// Matches reports whether an absolute path matches a watched pattern.
func (w *Watcher) Matches(path string) bool {
	path = filepath.ToSlash(path)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// Start adds watches under each pattern root and begins processing events.
// Files present at start are hashed so unchanged rewrites are ignored.
func (w *Watcher) Start(ctx context.Context) error {
	roots := make(map[string]bool)
	for _, p := range w.config.Patterns {
		root, err := watchRoot(p)
		if err != nil {
			return err
		}
		roots[root] = true
	}
	for root := range roots {
		if err := w.addWatchesRecursive(root); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)

	w.logger.Info("Statement watcher started",
		"patterns", w.config.Patterns,
		"debounce", w.config.GetDebounceDelay())
	return nil
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if w.Matches(path) {
				if content, err := os.ReadFile(path); err == nil {
					w.setHash(path, contentHash(content))
				}
			}
			return nil
		}

		base := filepath.Base(path)
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.config.GetDebounceDelay())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory",
					"path", event.Name,
					"error", err)
			}
			return
		}
	}
	if !w.Matches(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Statement file change detected",
		"path", event.Name,
		"op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var change Change
	for path := range toProcess {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				w.hashMu.Lock()
				delete(w.hashes, path)
				w.hashMu.Unlock()
				change.Removed = append(change.Removed, path)
			} else {
				w.logger.Warn("Failed to read statement file",
					"path", path,
					"error", err)
			}
			continue
		}

		hash := contentHash(content)
		if old, ok := w.getHash(path); ok && old == hash {
			continue
		}
		w.setHash(path, hash)
		change.Modified = append(change.Modified, path)
	}

	if len(change.Modified) == 0 && len(change.Removed) == 0 {
		return
	}
	sort.Strings(change.Modified)
	sort.Strings(change.Removed)

	select {
	case w.events <- change:
	case <-ctx.Done():
	}
}

func (w *Watcher) getHash(path string) (string, bool) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	h, ok := w.hashes[path]
	return h, ok
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
