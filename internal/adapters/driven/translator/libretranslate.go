package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure LibreTranslate implements the interface.
var _ driven.Translator = (*LibreTranslate)(nil)

const libreMaxChars = 2000

// LibreTranslate calls a self-hosted LibreTranslate server.
type LibreTranslate struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewLibreTranslate creates a client for the server at baseURL.
func NewLibreTranslate(baseURL, apiKey string, timeout time.Duration) *LibreTranslate {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LibreTranslate{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

// Name identifies the backend in logs.
func (l *LibreTranslate) Name() string { return "libretranslate" }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate posts text in pieces to /translate.
func (l *LibreTranslate) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = "auto"
	}
	return translatePieces(text, libreMaxChars, func(piece string) (string, error) {
		if err := l.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return l.post(ctx, libreRequest{Q: piece, Source: source, Target: target, Format: "text", APIKey: l.apiKey})
	})
}

func (l *LibreTranslate) post(ctx context.Context, body libreRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("libretranslate: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("libretranslate: reading response: %w", err)
	}

	var out libreResponse
	_ = json.Unmarshal(raw, &out)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("libretranslate: %w", domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("libretranslate: status %d: %s", resp.StatusCode, msg)
	}
	return out.TranslatedText, nil
}
