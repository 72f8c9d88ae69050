package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// defaultArchiveTimeout bounds one push when no timeout is configured.
const defaultArchiveTimeout = 60 * time.Second

// Archiver pushes copies of canonical and derived files to an ArchiveSink in
// the background. Failures are logged once and otherwise ignored.
// A nil *Archiver or one without a sink is a no-op.
type Archiver struct {
	sink    driven.ArchiveSink
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewArchiver creates an archiver. sink may be nil.
func NewArchiver(sink driven.ArchiveSink, timeout time.Duration) *Archiver {
	if timeout <= 0 {
		timeout = defaultArchiveTimeout
	}
	return &Archiver{sink: sink, timeout: timeout}
}

// Push starts an upload of data under name and returns immediately.
// data must not be modified afterwards.
func (a *Archiver) Push(name string, data []byte) {
	if a == nil || a.sink == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.sink.Push(ctx, name, data); err != nil {
			logger.Warn("archive push of %s to %s failed: %v", name, a.sink.Name(), err)
			return
		}
		logger.Debug("archived %s to %s", name, a.sink.Name())
	}()
}

// Wait blocks until every started push has finished.
func (a *Archiver) Wait() {
	if a == nil {
		return
	}
	a.wg.Wait()
}
