package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Dropbox implements the interface.
var _ driven.ArchiveSink = (*Dropbox)(nil)

// Dropbox uploads files under a path prefix in a Dropbox account.
type Dropbox struct {
	client files.Client
	prefix string
}

// NewDropbox creates a sink authenticated with an access token.
func NewDropbox(token, prefix string) *Dropbox {
	return NewDropboxWithConfig(dropbox.Config{Token: token, LogLevel: dropbox.LogOff}, prefix)
}

// NewDropboxWithConfig creates a sink from a full SDK config.
func NewDropboxWithConfig(cfg dropbox.Config, prefix string) *Dropbox {
	prefix = "/" + strings.Trim(prefix, "/")
	return &Dropbox{client: files.New(cfg), prefix: prefix}
}

// Name identifies the backend in logs.
func (d *Dropbox) Name() string { return "dropbox" }

// Push uploads data to <prefix>/<name>, overwriting any existing file.
// Uploads above 150MB need an upload session and are rejected.
func (d *Dropbox) Push(ctx context.Context, name string, data []byte) error {
	if len(data) > 150<<20 {
		return fmt.Errorf("dropbox upload %s: file too large for single upload", name)
	}
	arg := files.NewUploadArg(path.Join(d.prefix, name))
	arg.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: files.WriteModeOverwrite}}
	arg.Mute = true

	// The SDK has no context support; run the upload aside so ctx still bounds the caller.
	done := make(chan error, 1)
	go func() {
		_, err := d.client.Upload(arg, bytes.NewReader(data))
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("dropbox upload %s: %w", name, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("dropbox upload %s: %w", name, err)
		}
		return nil
	}
}
