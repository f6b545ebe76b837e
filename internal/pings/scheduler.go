// Package pings runs the scheduled reachability probes. Each enabled task
// gets its own goroutine ticking at the task's interval; outcomes are written
// as ping records for the dashboard charts.
package pings

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vanmoi/vanmoi/internal/store"
)

const reloadInterval = time.Minute

type TaskStore interface {
	EnabledPingTasks(ctx context.Context) ([]store.PingTask, error)
	InsertPingRecord(ctx context.Context, taskID uuid.UUID, clientID *uuid.UUID, latencyMs *float32, success bool) error
}

// DialFunc is the probe transport, replaceable in tests.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type runner struct {
	task   store.PingTask
	cancel context.CancelFunc
}

type Scheduler struct {
	store TaskStore
	dial  DialFunc

	mu      sync.Mutex
	runners map[uuid.UUID]*runner
	wg      sync.WaitGroup
}

func NewScheduler(taskStore TaskStore) *Scheduler {
	dialer := &net.Dialer{}
	return &Scheduler{
		store:   taskStore,
		dial:    dialer.DialContext,
		runners: make(map[uuid.UUID]*runner),
	}
}

// Run blocks until ctx is cancelled, reconciling the running probes against
// the enabled tasks once a minute so CRUD changes take effect without a
// restart.
func (s *Scheduler) Run(ctx context.Context) {
	s.reload(ctx)

	ticker := time.NewTicker(reloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reload(ctx)
		case <-ctx.Done():
			s.stopAll()
			s.wg.Wait()
			return
		}
	}
}

func (s *Scheduler) reload(ctx context.Context) {
	tasks, err := s.store.EnabledPingTasks(ctx)
	if err != nil {
		slog.Error("Failed to load ping tasks", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[uuid.UUID]store.PingTask, len(tasks))
	for _, task := range tasks {
		want[task.ID] = task
	}

	// Stop runners for deleted or reconfigured tasks.
	for id, r := range s.runners {
		task, ok := want[id]
		if ok && task.Target == r.task.Target &&
			task.IntervalSeconds == r.task.IntervalSeconds &&
			task.TimeoutSeconds == r.task.TimeoutSeconds {
			continue
		}
		r.cancel()
		delete(s.runners, id)
	}

	for id, task := range want {
		if _, ok := s.runners[id]; ok {
			continue
		}
		taskCtx, cancel := context.WithCancel(ctx)
		s.runners[id] = &runner{task: task, cancel: cancel}
		s.wg.Add(1)
		go s.runTask(taskCtx, task)
	}
}

func (s *Scheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.runners {
		r.cancel()
		delete(s.runners, id)
	}
}

func (s *Scheduler) runTask(ctx context.Context, task store.PingTask) {
	defer s.wg.Done()

	interval := time.Duration(task.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.probe(ctx, task)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) probe(ctx context.Context, task store.PingTask) {
	timeout := time.Duration(task.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := s.dial(dialCtx, "tcp", probeAddress(task.Target))

	var latency *float32
	success := err == nil
	if success {
		_ = conn.Close()
		ms := float32(time.Since(start).Seconds() * 1000)
		latency = &ms
	}

	if err := s.store.InsertPingRecord(ctx, task.ID, nil, latency, success); err != nil {
		slog.Error("Failed to insert ping record", "task_id", task.ID, "error", err)
	}
}

// probeAddress normalizes a task target into a dialable host:port. Bare hosts
// default to port 80.
func probeAddress(target string) string {
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}
	return net.JoinHostPort(target, "80")
}
