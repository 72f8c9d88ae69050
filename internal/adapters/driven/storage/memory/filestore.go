package memory

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is an in-memory implementation of driven.FileStore.
type FileStore struct {
	mu        sync.RWMutex
	canonical map[string][]byte
	blobs     map[string][]byte
	derived   map[string][]byte
}

// NewFileStore creates an empty file store.
func NewFileStore() *FileStore {
	return &FileStore{
		canonical: make(map[string][]byte),
		blobs:     make(map[string][]byte),
		derived:   make(map[string][]byte),
	}
}

// SaveCanonical stores data under name, replacing any previous file.
func (f *FileStore) SaveCanonical(name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canonical[name] = bytes.Clone(data)
	return "mem://docs/" + name, nil
}

// Canonical returns a canonical file, for assertions.
func (f *FileStore) Canonical(name string) ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.canonical[name]
	return b, ok
}

// PutBlob stores data by content hash.
func (f *FileStore) PutBlob(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	h := hex.EncodeToString(sum[:])
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blobs[h]; !ok {
		f.blobs[h] = bytes.Clone(data)
	}
	return h, nil
}

// GetBlob returns a blob.
func (f *FileStore) GetBlob(hash string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.blobs[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bytes.Clone(b), nil
}

// DeleteBlob removes a blob.
func (f *FileStore) DeleteBlob(hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, hash)
	return nil
}

// HasBlob reports whether a blob exists, for assertions.
func (f *FileStore) HasBlob(hash string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.blobs[hash]
	return ok
}

// SaveDerived stores a derived artifact.
func (f *FileStore) SaveDerived(name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.derived[name]; ok {
		return "", domain.ErrAlreadyExists
	}
	f.derived[name] = bytes.Clone(data)
	return "mem://derived/" + name, nil
}

// OpenDerived opens a derived artifact.
func (f *FileStore) OpenDerived(name string) (io.ReadCloser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.derived[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
