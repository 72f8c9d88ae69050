package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

func TestEmbedderHandle_BuildsOnce(t *testing.T) {
	var calls atomic.Int32
	h := NewEmbedderHandle(func() (driven.EmbeddingService, error) {
		calls.Add(1)
		return &mockEmbeddingService{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, h.Get())
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())
}

func TestEmbedderHandle_FailureIsRemembered(t *testing.T) {
	var calls atomic.Int32
	h := NewEmbedderHandle(func() (driven.EmbeddingService, error) {
		calls.Add(1)
		return nil, errors.New("model download failed")
	})
	assert.Nil(t, h.Get())
	assert.Nil(t, h.Get())
	assert.EqualValues(t, 1, calls.Load())
}

func TestEmbedderHandle_Empty(t *testing.T) {
	var nilHandle *EmbedderHandle
	assert.Nil(t, nilHandle.Get())
	assert.Nil(t, NewEmbedderHandle(nil).Get())
	assert.Nil(t, StaticEmbedder(nil).Get())

	svc := &mockEmbeddingService{}
	assert.Same(t, svc, StaticEmbedder(svc).Get())
}
