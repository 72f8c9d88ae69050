package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return errors.Is(err, domain.ErrRateLimited)
}

// WrapError maps Google API status codes onto domain errors.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("google: %w: %s", domain.ErrAuthInvalid, gerr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("google: %w: %s", domain.ErrForbidden, gerr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("google: %w: %s", domain.ErrNotFound, gerr.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("google: %w", domain.ErrRateLimited)
	default:
		return err
	}
}
