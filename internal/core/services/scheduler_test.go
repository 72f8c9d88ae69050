package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsDueTasksOnStart(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(Task{
		ID:       TaskIDIndexRepair,
		Name:     "Index repair",
		Interval: time.Hour,
		Run: func(context.Context) (int, error) {
			runs.Add(1)
			return 3, nil
		},
	})
	s.tick = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.EqualValues(t, 1, runs.Load(), "hourly task runs once")
	states := s.Tasks()
	require.Len(t, states, 1)
	assert.Equal(t, 3, states[0].Items)
	assert.Empty(t, states[0].LastError)
	assert.False(t, states[0].LastSuccess.IsZero())
	assert.True(t, states[0].NextRun.After(states[0].LastRun))
}

func TestScheduler_StopAndFailures(t *testing.T) {
	s := NewScheduler(
		Task{ID: "broken", Interval: time.Millisecond, Run: func(context.Context) (int, error) {
			return 0, errors.New("disk full")
		}},
		Task{ID: "ignored", Interval: 0, Run: func(context.Context) (int, error) { return 0, nil }},
		Task{ID: "no-run", Interval: time.Second},
	)
	s.tick = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Stop())
	require.NoError(t, <-done)

	states := s.Tasks()
	require.Len(t, states, 1)
	assert.Equal(t, "disk full", states[0].LastError)
	assert.True(t, states[0].LastSuccess.IsZero())
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(Task{ID: "x", Interval: time.Hour, Run: func(context.Context) (int, error) { return 7, nil }})

	state, ok := s.RunNow(context.Background(), "x")
	require.True(t, ok)
	assert.Equal(t, 7, state.Items)

	_, ok = s.RunNow(context.Background(), "missing")
	assert.False(t, ok)
}
