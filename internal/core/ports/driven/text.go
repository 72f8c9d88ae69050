package driven

import "context"

// OCREngine recognises text in a rendered page image.
type OCREngine interface {
	// Recognize returns the text found in img (PNG) using the language hints.
	Recognize(ctx context.Context, img []byte, languages []string) (string, error)

	// Close releases resources.
	Close() error
}

// LanguageDetector guesses the dominant language of a text.
type LanguageDetector interface {
	// Detect returns an ISO 639-1 code. Unreliable or empty input is an error.
	Detect(text string) (string, error)
}

// Translator translates text between languages.
type Translator interface {
	// Translate returns text translated from source into target.
	Translate(ctx context.Context, text, source, target string) (string, error)

	// Name identifies the backend in logs.
	Name() string
}
