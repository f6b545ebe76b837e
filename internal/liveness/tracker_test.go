package liveness

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type transition struct {
	id     uuid.UUID
	online bool
}

type fakeStatusStore struct {
	transitions []transition
	err         error
}

func (f *fakeStatusStore) SetClientOnline(_ context.Context, id uuid.UUID, online bool) error {
	f.transitions = append(f.transitions, transition{id: id, online: online})
	return f.err
}

func TestTrackerTransitions(t *testing.T) {
	fake := &fakeStatusStore{}
	tracker := NewTracker(fake)
	id := uuid.New()

	tracker.MarkOnline(context.Background(), id)
	tracker.MarkOnline(context.Background(), id)
	tracker.MarkOffline(context.Background(), id)

	assert.Equal(t, []transition{
		{id: id, online: true},
		{id: id, online: true},
		{id: id, online: false},
	}, fake.transitions)
}

func TestTrackerSwallowsStoreErrors(t *testing.T) {
	fake := &fakeStatusStore{err: errors.New("connection refused")}
	tracker := NewTracker(fake)

	// Must not panic or propagate; liveness is best-effort.
	tracker.MarkOnline(context.Background(), uuid.New())
	tracker.MarkOffline(context.Background(), uuid.New())

	assert.Len(t, fake.transitions, 2)
}
