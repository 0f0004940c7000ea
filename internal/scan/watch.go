package scan

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDefault is how long a new file must stay quiet before it is
// audited. Rips and copies write FLACs in bursts; auditing a half-written
// file wastes a decode and logs garbage.
const debounceDefault = 2 * time.Second

// watchQueueSize buffers bursts (a full album dropped at once) without
// blocking the event loop.
const watchQueueSize = 256

// Watcher audits container files as they appear under the input root.
type Watcher struct {
	sc       *Scanner
	root     string
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher feeding the given scanner.
func NewWatcher(sc *Scanner, root string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		sc:       sc,
		root:     root,
		debounce: debounceDefault,
		logger:   logger,
	}
}

// Run watches the root (recursively) for new container files and audits
// them. Blocks until ctx is cancelled. Files in flight when cancellation
// arrives are finished so their records reach the log.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// fsnotify is not recursive; register every existing directory and
	// pick up new ones from Create events.
	if err := addDirs(watcher, w.root); err != nil {
		return err
	}

	// A single debounce timer accumulates ready paths; when it fires,
	// everything collected so far flushes to the worker queue. No
	// per-file goroutines or timers.
	var mu sync.Mutex
	ready := make(map[string]bool)
	queue := make(chan string, watchQueueSize)

	var wg sync.WaitGroup
	workers := w.sc.cfg.Jobs
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				w.sc.Process(context.WithoutCancel(ctx), path)
			}
		}()
	}

	flush := func() {
		mu.Lock()
		batch := make([]string, 0, len(ready))
		for p := range ready {
			batch = append(batch, p)
		}
		ready = make(map[string]bool)
		mu.Unlock()

		for _, p := range batch {
			select {
			case queue <- p:
			case <-ctx.Done():
				return
			}
		}
	}

	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()

	defer func() {
		debounceTimer.Stop()
		flush()
		close(queue)
		wg.Wait()
	}()

	w.logger.Info("watching", zap.String("root", w.root))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-debounceTimer.C:
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addDirs(watcher, event.Name)
					continue
				}
			}
			if !IsAudioFile(event.Name) {
				continue
			}

			mu.Lock()
			ready[event.Name] = true
			mu.Unlock()

			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// addDirs registers root and every directory below it.
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return err
			}
		}
		return nil
	})
}
