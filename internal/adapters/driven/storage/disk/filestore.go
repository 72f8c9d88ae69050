// Package disk stores document bytes on the local filesystem.
//
// Layout under the data directory:
//
//	docs/<name>.pdf        canonical files, overwritten on re-upload
//	blobs/ab/<sha256>      immutable content-addressed copies referenced by records
//	derived/<name>         redactions and page extracts
package disk

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore implements driven.FileStore on a directory tree.
type FileStore struct {
	root string
}

// NewFileStore creates the directory layout under root.
func NewFileStore(root string) (*FileStore, error) {
	for _, dir := range []string{"docs", "blobs", "derived"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0700); err != nil {
			return nil, fmt.Errorf("creating %s directory: %w", dir, err)
		}
	}
	return &FileStore{root: root}, nil
}

// Root returns the data directory.
func (f *FileStore) Root() string {
	return f.root
}

// SaveCanonical writes data to docs/<name>, replacing any previous file.
func (f *FileStore) SaveCanonical(name string, data []byte) (string, error) {
	p, err := f.child("docs", name)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(p, data); err != nil {
		return "", fmt.Errorf("saving canonical file: %w", err)
	}
	return p, nil
}

// PutBlob writes data content-addressed. Existing blobs are left untouched.
func (f *FileStore) PutBlob(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	h := hex.EncodeToString(sum[:])
	p := f.blobPath(h)
	if _, err := os.Stat(p); err == nil {
		return h, nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}
	if err := writeAtomic(p, data); err != nil {
		return "", fmt.Errorf("saving blob: %w", err)
	}
	return h, nil
}

// GetBlob reads a blob by hash.
func (f *FileStore) GetBlob(hash string) ([]byte, error) {
	if !validHash(hash) {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(f.blobPath(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

// DeleteBlob removes a blob if present.
func (f *FileStore) DeleteBlob(hash string) error {
	if !validHash(hash) {
		return nil
	}
	err := os.Remove(f.blobPath(hash))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// SaveDerived writes a derived artifact. Names are never reused.
func (f *FileStore) SaveDerived(name string, data []byte) (string, error) {
	p, err := f.child("derived", name)
	if err != nil {
		return "", err
	}
	file, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("derived artifact %s: %w", name, domain.ErrAlreadyExists)
	}
	if err != nil {
		return "", fmt.Errorf("creating derived artifact: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(p)
		return "", fmt.Errorf("writing derived artifact: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing derived artifact: %w", err)
	}
	return p, nil
}

// OpenDerived opens a derived artifact.
func (f *FileStore) OpenDerived(name string) (io.ReadCloser, error) {
	p, err := f.child("derived", name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening derived artifact: %w", err)
	}
	return file, nil
}

// child resolves name inside dir, rejecting anything that is not a plain
// file name.
func (f *FileStore) child(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: bad file name %q", domain.ErrInvalidInput, name)
	}
	return filepath.Join(f.root, dir, name), nil
}

func (f *FileStore) blobPath(hash string) string {
	return filepath.Join(f.root, "blobs", hash[:2], hash)
}

func validHash(h string) bool {
	if len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

// writeAtomic writes to a temp file in the same directory then renames it,
// so readers never observe a partially written file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
