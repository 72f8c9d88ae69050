package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// slowSink blocks until its context ends.
type slowSink struct{ done chan error }

func (s *slowSink) Push(ctx context.Context, _ string, _ []byte) error {
	<-ctx.Done()
	s.done <- ctx.Err()
	return ctx.Err()
}

func (s *slowSink) Name() string { return "slow" }

func TestArchiver_PushAndWait(t *testing.T) {
	sink := &mockSink{}
	a := NewArchiver(sink, time.Second)
	a.Push("a.pdf", []byte("1"))
	a.Push("b.pdf", []byte("2"))
	a.Wait()
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, sink.names())
}

func TestArchiver_FailureIsSwallowed(t *testing.T) {
	sink := &mockSink{err: errors.New("503")}
	a := NewArchiver(sink, time.Second)
	a.Push("a.pdf", nil)
	a.Wait()
	assert.Len(t, sink.names(), 1)
}

func TestArchiver_Timeout(t *testing.T) {
	sink := &slowSink{done: make(chan error, 1)}
	a := NewArchiver(sink, 10*time.Millisecond)
	a.Push("a.pdf", nil)
	a.Wait()
	assert.ErrorIs(t, <-sink.done, context.DeadlineExceeded)
}

func TestArchiver_NoSink(t *testing.T) {
	var nilArchiver *Archiver
	nilArchiver.Push("a.pdf", nil)
	nilArchiver.Wait()

	a := NewArchiver(nil, 0)
	a.Push("a.pdf", nil)
	a.Wait()
}
