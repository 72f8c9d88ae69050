// Package converter composes the document-to-PDF converters.
package converter

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure Chain implements the interface.
var _ driven.Converter = (*Chain)(nil)

// Selective is implemented by converters that only handle some formats.
type Selective interface {
	Supports(filename string) bool
}

// Chain tries converters in order. A converter that implements Selective
// and does not support the file is skipped.
type Chain struct {
	converters []driven.Converter
}

// NewChain creates a chain. Nil entries are skipped.
func NewChain(converters ...driven.Converter) *Chain {
	c := &Chain{}
	for _, conv := range converters {
		if conv != nil {
			c.converters = append(c.converters, conv)
		}
	}
	return c
}

// Convert returns the first successful conversion. Context cancellation
// stops the chain immediately.
func (c *Chain) Convert(ctx context.Context, data []byte, filename string) ([]byte, error) {
	var errs []error
	for _, conv := range c.converters {
		if s, ok := conv.(Selective); ok && !s.Supports(filename) {
			continue
		}
		out, err := conv.Convert(ctx, data, filename)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Debug("converter %T failed for %s: %v", conv, filename, err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no converter for %s", domain.ErrUnsupportedFormat, domain.FileExt(filename))
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrUnsupportedFormat, errors.Join(errs...))
}
