package google

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, domain.ErrAuthInvalid},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}
	for _, tt := range tests {
		err := WrapError(&googleapi.Error{Code: tt.code, Message: "x"})
		assert.ErrorIs(t, err, tt.want, "code %d", tt.code)
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, WrapError(plain))
	assert.NoError(t, WrapError(nil))
	assert.True(t, IsRateLimited(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.False(t, IsRateLimited(plain))
}

func TestNewTokenSource(t *testing.T) {
	_, err := NewTokenSource(context.Background(), Credentials{})
	assert.ErrorIs(t, err, ErrNoCredentials)

	ts, err := NewTokenSource(context.Background(), Credentials{AccessToken: "abc"})
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
}

func TestRateLimiter_BackoffHonoursContext(t *testing.T) {
	rl := NewRateLimiter(ServiceDrive)
	rl.RecordRateLimitError(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 1})
	assert.NoError(t, rl.Wait(context.Background()))
}
