package translator

import (
	"context"
	"fmt"
	"html"

	"google.golang.org/api/option"
	"google.golang.org/api/translate/v2"

	"github.com/custodia-labs/archivist/internal/adapters/driven/google"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure Google implements the interface.
var _ driven.Translator = (*Google)(nil)

// googleMaxChars keeps each request under the v2 payload limit.
const googleMaxChars = 4500

// Google translates with the Cloud Translation v2 API.
type Google struct {
	svc     *translate.Service
	limiter *google.RateLimiter
}

// NewGoogle creates a Google translator authenticated with an API key.
func NewGoogle(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Google, error) {
	svc, err := google.NewTranslateService(ctx, apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("google translate: %w", err)
	}
	return &Google{svc: svc, limiter: google.NewRateLimiter(google.ServiceTranslate)}, nil
}

// Name identifies the backend in logs.
func (g *Google) Name() string { return "google" }

// Translate sends text in pieces and joins the results.
func (g *Google) Translate(ctx context.Context, text, source, target string) (string, error) {
	return translatePieces(text, googleMaxChars, func(piece string) (string, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
		call := g.svc.Translations.List([]string{piece}, target).Format("text").Context(ctx)
		if source != "" {
			call = call.Source(source)
		}
		resp, err := call.Do()
		if err != nil {
			if google.IsRateLimited(err) {
				g.limiter.RecordRateLimitError(0)
			}
			return "", google.WrapError(err)
		}
		if len(resp.Translations) == 0 {
			return "", fmt.Errorf("google translate: empty response")
		}
		return html.UnescapeString(resp.Translations[0].TranslatedText), nil
	})
}
