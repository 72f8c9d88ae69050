package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/translate/v2"
)

// NewDriveService creates a Google Drive API service using the provided TokenSource.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	return drive.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
}

// NewTranslateService creates a Cloud Translation (v2) service keyed by an API key.
func NewTranslateService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*translate.Service, error) {
	return translate.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
}

// WithEndpoint points a service at a different base URL. Tests use it with httptest.
func WithEndpoint(url string, client *http.Client) []option.ClientOption {
	opts := []option.ClientOption{option.WithEndpoint(url)}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}
	return opts
}
