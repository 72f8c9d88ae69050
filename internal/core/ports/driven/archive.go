package driven

import "context"

// ArchiveSink receives copies of canonical and derived files for long-term
// storage in an external document management system.
type ArchiveSink interface {
	// Push uploads data under name.
	Push(ctx context.Context, name string, data []byte) error

	// Name identifies the backend in logs.
	Name() string
}
