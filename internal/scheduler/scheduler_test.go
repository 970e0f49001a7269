package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHealth struct {
	mu       sync.Mutex
	items    map[string]string
	failures map[string]string
}

func newFakeHealth() *fakeHealth {
	return &fakeHealth{items: map[string]string{}, failures: map[string]string{}}
}

func (f *fakeHealth) RegisterItemStr(category, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[category+"/"+id] = name
}

func (f *fakeHealth) SetErrorStr(category, id, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[category+"/"+id] = message
}

func (f *fakeHealth) ClearStatusStr(category, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, category+"/"+id)
}

func (f *fakeHealth) failure(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.failures[key]
	return msg, ok
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func waitForRun(t *testing.T, s *Scheduler, id string) TaskInfo {
	t.Helper()
	var info *TaskInfo
	require.Eventually(t, func() bool {
		var err error
		info, err = s.GetTask(id)
		return err == nil && info.LastRun != nil && !info.Running
	}, time.Second, 5*time.Millisecond)
	return *info
}

func TestScheduler_RunNowReportsOutcome(t *testing.T) {
	s := newTestScheduler(t)
	health := newFakeHealth()
	s.SetHealthReporter(health)

	fail := true
	var mu sync.Mutex
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "detail-cache-sweep",
		Name: "Detail Cache Sweep",
		Cron: Every(time.Hour),
		Func: func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return errors.New("sweep failed")
			}
			return nil
		},
	}))
	assert.Equal(t, "Detail Cache Sweep", health.items["tasks/detail-cache-sweep"])

	require.NoError(t, s.RunNow("detail-cache-sweep"))
	info := waitForRun(t, s, "detail-cache-sweep")
	assert.Equal(t, "sweep failed", info.LastError)
	msg, failed := health.failure("tasks/detail-cache-sweep")
	assert.True(t, failed)
	assert.Equal(t, "sweep failed", msg)

	mu.Lock()
	fail = false
	mu.Unlock()
	require.NoError(t, s.RunNow("detail-cache-sweep"))
	require.Eventually(t, func() bool {
		_, failed := health.failure("tasks/detail-cache-sweep")
		return !failed
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_RegisterTaskErrors(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.RegisterTask(TaskConfig{ID: "a", Name: "A", Cron: "0 * * * *", Func: noop}))
	assert.Error(t, s.RegisterTask(TaskConfig{ID: "a", Name: "A", Cron: "0 * * * *", Func: noop}), "duplicate id")
	assert.Error(t, s.RegisterTask(TaskConfig{ID: "b", Name: "B", Cron: "not a cron", Func: noop}))
}

func TestScheduler_UnknownTask(t *testing.T) {
	s := newTestScheduler(t)

	assert.ErrorIs(t, s.RunNow("missing"), ErrTaskNotFound)
	_, err := s.GetTask("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestScheduler_RunOnStartAndStopCancels(t *testing.T) {
	s, err := New(zerolog.Nop())
	require.NoError(t, err)

	started := make(chan struct{})
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:         "catalog-options-refresh",
		Name:       "Catalog Options Refresh",
		Cron:       Every(time.Hour),
		RunOnStart: true,
		Func: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}))
	require.NoError(t, s.Start())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("task did not run on start")
	}

	tasks := s.ListTasks()
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Running)

	require.NoError(t, s.Stop())
}
