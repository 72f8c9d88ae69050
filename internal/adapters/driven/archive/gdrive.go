package archive

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/archivist/internal/adapters/driven/google"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Drive implements the interface.
var _ driven.ArchiveSink = (*Drive)(nil)

// Drive uploads files into a Google Drive folder.
type Drive struct {
	svc     *drive.Service
	folder  string
	limiter *google.RateLimiter
}

// NewDrive creates a sink that uploads into folderID ("" for My Drive root).
func NewDrive(ctx context.Context, ts oauth2.TokenSource, folderID string, opts ...option.ClientOption) (*Drive, error) {
	svc, err := google.NewDriveService(ctx, ts, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive: %w", err)
	}
	return &Drive{svc: svc, folder: folderID, limiter: google.NewRateLimiter(google.ServiceDrive)}, nil
}

// Name identifies the backend in logs.
func (d *Drive) Name() string { return "gdrive" }

// Push creates a new Drive file. Drive allows duplicate names, so repeated
// pushes of the same name produce separate revisions side by side.
func (d *Drive) Push(ctx context.Context, name string, data []byte) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	meta := &drive.File{Name: name, MimeType: contentType(name)}
	if d.folder != "" {
		meta.Parents = []string{d.folder}
	}
	_, err := d.svc.Files.Create(meta).Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	if err != nil {
		if google.IsRateLimited(err) {
			d.limiter.RecordRateLimitError(0)
		}
		return fmt.Errorf("drive upload %s: %w", name, google.WrapError(err))
	}
	return nil
}
