package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	calls   int
	days    int32
	deleted int64
	err     error
}

func (f *fakePurger) DeleteOldRecords(_ context.Context, days int32) (int64, error) {
	f.calls++
	f.days = days
	return f.deleted, f.err
}

func TestSweepPassesRetention(t *testing.T) {
	fake := &fakePurger{deleted: 42}
	s := NewSweeper(fake, 30)

	s.sweep(context.Background())

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, int32(30), fake.days)
}

func TestSweepSwallowsErrors(t *testing.T) {
	fake := &fakePurger{err: errors.New("deadlock detected")}
	s := NewSweeper(fake, 30)

	// Must not panic; the next tick retries.
	s.sweep(context.Background())
	s.sweep(context.Background())

	assert.Equal(t, 2, fake.calls)
}

func TestRunDisabledWithoutRetention(t *testing.T) {
	fake := &fakePurger{}
	s := NewSweeper(fake, 0)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweeper did not return")
	}
	assert.Zero(t, fake.calls)
}
