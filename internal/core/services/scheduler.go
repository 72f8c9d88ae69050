package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/archivist/internal/logger"
)

// TaskIDIndexRepair is the periodic full-text index consistency check.
const TaskIDIndexRepair = "index-repair"

// defaultTick is how often the scheduler looks for due tasks.
const defaultTick = time.Minute

// Task is a unit of background maintenance.
type Task struct {
	ID       string
	Name     string
	Interval time.Duration

	// Run performs the work and reports how many items it touched.
	Run func(ctx context.Context) (int, error)
}

// TaskState is the observable state of a scheduled task.
type TaskState struct {
	ID          string
	Name        string
	Interval    time.Duration
	LastRun     time.Time
	LastSuccess time.Time
	LastError   string
	NextRun     time.Time
	Items       int
}

type scheduledTask struct {
	task    Task
	state   TaskState
	running bool
}

// Scheduler runs maintenance tasks on fixed intervals. It keeps task state
// in memory; every task first runs immediately on Start.
type Scheduler struct {
	tick time.Duration

	mu      sync.Mutex
	tasks   map[string]*scheduledTask
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler for tasks. Tasks without a Run func or
// with a non-positive interval are ignored.
func NewScheduler(tasks ...Task) *Scheduler {
	s := &Scheduler{tick: defaultTick, tasks: make(map[string]*scheduledTask)}
	for _, t := range tasks {
		if t.Run == nil || t.Interval <= 0 {
			continue
		}
		s.tasks[t.ID] = &scheduledTask{
			task:  t,
			state: TaskState{ID: t.ID, Name: t.Name, Interval: t.Interval},
		}
	}
	return s
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx ends.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// Stop shuts the scheduler down and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Tasks returns a snapshot of every task's state, ordered by ID.
func (s *Scheduler) Tasks() []TaskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskState, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RunNow executes a task synchronously, regardless of its schedule.
func (s *Scheduler) RunNow(ctx context.Context, id string) (TaskState, bool) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok || t.running {
		s.mu.Unlock()
		return TaskState{}, false
	}
	t.running = true
	s.mu.Unlock()

	s.execute(ctx, t)

	s.mu.Lock()
	defer s.mu.Unlock()
	return t.state, true
}

func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var due []*scheduledTask
	for _, t := range s.tasks {
		if t.running {
			continue
		}
		if t.state.NextRun.IsZero() || !t.state.NextRun.After(now) {
			t.running = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		s.wg.Add(1)
		go func(t *scheduledTask) {
			defer s.wg.Done()
			s.execute(ctx, t)
		}(t)
	}
}

// execute runs a task already marked running and records the outcome.
func (s *Scheduler) execute(ctx context.Context, t *scheduledTask) {
	started := time.Now()
	items, err := t.task.Run(ctx)
	ended := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	t.running = false
	t.state.LastRun = started
	t.state.NextRun = ended.Add(t.task.Interval)
	t.state.Items = items
	if err != nil {
		t.state.LastError = err.Error()
		logger.Warn("scheduler: task %s failed: %v", t.task.ID, err)
		return
	}
	t.state.LastError = ""
	t.state.LastSuccess = ended
	logger.Debug("scheduler: task %s done in %s (%d items)", t.task.ID, ended.Sub(started).Round(time.Millisecond), items)
}
