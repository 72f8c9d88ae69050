package translator

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure Chain implements the interface.
var _ driven.Translator = (*Chain)(nil)

// Chain tries each translator in order and returns the first success.
type Chain struct {
	translators []driven.Translator
}

// NewChain creates a chain. Nil entries are skipped.
func NewChain(translators ...driven.Translator) *Chain {
	c := &Chain{}
	for _, t := range translators {
		if t != nil {
			c.translators = append(c.translators, t)
		}
	}
	return c
}

// Len returns the number of translators in the chain.
func (c *Chain) Len() int { return len(c.translators) }

// Name identifies the backend in logs.
func (c *Chain) Name() string { return "chain" }

// Translate returns the first successful translation. When every backend
// fails the error wraps domain.ErrTranslationUnavailable.
func (c *Chain) Translate(ctx context.Context, text, source, target string) (string, error) {
	if len(c.translators) == 0 {
		return "", domain.ErrTranslationUnavailable
	}
	var errs []error
	for _, t := range c.translators {
		out, err := t.Translate(ctx, text, source, target)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Debug("translator %s failed for %s->%s: %v", t.Name(), source, target, err)
		errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
	}
	return "", fmt.Errorf("%w: %w", domain.ErrTranslationUnavailable, errors.Join(errs...))
}
