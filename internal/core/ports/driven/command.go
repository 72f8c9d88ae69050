package driven

import "context"

// CommandRunner executes external programs. Adapters that shell out to
// soffice, pdftoppm or argos-translate take one so tests can fake them.
type CommandRunner interface {
	// Run executes name with args and returns stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunIn executes name with args inside dir and returns stdout.
	RunIn(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}
