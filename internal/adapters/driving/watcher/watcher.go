// Package watcher ingests files dropped into an inbox directory.
//
// Files are picked up on create or write, after a quiet period so partial
// copies are not ingested. Each file is moved to processed/ on success and
// failed/ otherwise, so the inbox only ever holds pending work.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Subdirectories of the inbox that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// DefaultDebounce is the quiet period before a file is ingested.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned when Run is called on a closed watcher.
var ErrClosed = errors.New("watcher: closed")

// Result reports the outcome for one inbox file.
type Result struct {
	// Name is the file name as it appeared in the inbox.
	Name string

	// Document is set on success.
	Document *domain.Document

	// Err is set on failure.
	Err error

	// MovedTo is where the file ended up.
	MovedTo string
}

// Watcher ingests files appearing in an inbox directory.
type Watcher struct {
	dir      string
	ingest   driving.IngestService
	debounce time.Duration
	results  chan Result

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService) *Watcher {
	return &Watcher{
		dir:      dir,
		ingest:   ingest,
		debounce: DefaultDebounce,
		results:  make(chan Result, 64),
		pending:  make(map[string]*time.Timer),
	}
}

// SetDebounce changes the quiet period. Call before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Results delivers one Result per handled file. Results are dropped when
// nobody reads them.
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Run processes files already in the inbox, then watches it until ctx is
// cancelled. It waits for in-flight ingests before returning.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}

	for _, sub := range []string{ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0700); err != nil {
			return fmt.Errorf("creating inbox %s directory: %w", sub, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("inbox: watching %s", w.dir)

	w.scanExisting(ctx)

	defer w.drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if name, ok := w.handleFsEvent(ev); ok {
				w.schedule(ctx, name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox: watch error: %v", err)
		}
	}
}

// Close stops pending timers. Files not yet ingested stay in the inbox and
// are picked up by the next Run.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for name, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, name)
	}
	return nil
}

// handleFsEvent returns the inbox file name an event refers to, if it is a
// create or write of a visible regular file directly inside the inbox.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	if filepath.Dir(ev.Name) != filepath.Clean(w.dir) {
		return "", false
	}
	name := filepath.Base(ev.Name)
	if !eligible(name) {
		return "", false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return name, true
}

// eligible skips hidden files and common partial-download suffixes.
func eligible(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".part", ".crdownload", ".tmp", ".swp":
		return false
	}
	return true
}

func (w *Watcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("inbox: listing %s: %v", w.dir, err)
		return
	}
	for _, e := range entries {
		if e.Type().IsRegular() && eligible(e.Name()) {
			w.schedule(ctx, e.Name())
		}
	}
}

// schedule (re)starts the quiet-period timer for name.
func (w *Watcher) schedule(ctx context.Context, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[name]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[name] == t {
			delete(w.pending, name)
		}
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, name)
	})
	w.pending[name] = t
}

// drain stops timers that have not fired and waits for running ingests.
func (w *Watcher) drain() {
	w.mu.Lock()
	for name, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, name)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) process(ctx context.Context, name string) {
	src := filepath.Join(w.dir, name)
	res := Result{Name: name}

	data, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err == nil {
		res.Document, err = w.ingest.Ingest(ctx, data, name)
	}

	sub := ProcessedDir
	if err != nil {
		res.Err = err
		sub = FailedDir
		logger.Warn("inbox: %s: %v", name, err)
	} else {
		logger.Info("inbox: ingested %s as document %d", name, res.Document.ID)
	}

	dst, moveErr := moveAside(src, filepath.Join(w.dir, sub))
	if moveErr != nil {
		logger.Warn("inbox: moving %s to %s: %v", name, sub, moveErr)
	}
	res.MovedTo = dst

	select {
	case w.results <- res:
	default:
	}
}

// moveAside renames src into dir, suffixing the name when it is taken.
func moveAside(src, dir string) (string, error) {
	name := filepath.Base(src)
	dst := filepath.Join(dir, name)
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(name)
		dst = filepath.Join(dir, fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), time.Now().UnixNano(), ext))
	}
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}
