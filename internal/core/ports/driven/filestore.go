package driven

import "io"

// FileStore holds the bytes behind documents.
//
// Canonical files are addressed by their sanitised name and overwritten on
// re-upload. Blobs are addressed by content hash and never change, so a
// document record keeps pointing at the bytes it was created from. Derived
// artifacts (redactions, extracts) live in their own namespace and never
// overwrite either.
type FileStore interface {
	// SaveCanonical writes the canonical file under name, replacing any previous one.
	SaveCanonical(name string, data []byte) (string, error)

	// PutBlob stores data content-addressed and returns its sha256 hex digest.
	PutBlob(data []byte) (string, error)

	// GetBlob returns the bytes for a digest, or domain.ErrNotFound.
	GetBlob(hash string) ([]byte, error)

	// DeleteBlob removes a blob. Missing blobs are not an error.
	DeleteBlob(hash string) error

	// SaveDerived writes a derived artifact under a fresh name and returns its path.
	SaveDerived(name string, data []byte) (string, error)

	// OpenDerived opens a derived artifact for reading.
	OpenDerived(name string) (io.ReadCloser, error)
}
