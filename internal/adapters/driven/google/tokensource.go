package google

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// DriveFileScope grants access to files created by the application.
const DriveFileScope = "https://www.googleapis.com/auth/drive.file"

// ErrNoCredentials is returned when neither an access token nor a refresh
// token is configured.
var ErrNoCredentials = errors.New("google: no access or refresh token configured")

// Credentials are the OAuth values the Drive sink can be configured with.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// NewTokenSource returns a refreshing token source when a refresh token and
// client are configured, and a static one for a bare access token.
func NewTokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if creds.RefreshToken != "" && creds.ClientID != "" {
		cfg := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{DriveFileScope},
		}
		tok := &oauth2.Token{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken, TokenType: "Bearer"}
		return oauth2.ReuseTokenSource(tok, cfg.TokenSource(ctx, tok)), nil
	}
	if creds.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"}), nil
	}
	return nil, ErrNoCredentials
}
