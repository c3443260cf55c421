package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

func TestStoreSaveAndByID(t *testing.T) {
	t.Parallel()

	sut := NewStore(time.Hour)
	id := uuid.New()

	_, err := sut.ByID(id)
	require.ErrorIs(t, err, model.ErrSettlementNotFound)

	stl := model.Settlement{ID: id, State: model.StateAwaitingConfirmation}
	sut.Save(stl)

	got, err := sut.ByID(id)
	require.NoError(t, err)
	assert.Equal(t, stl, got)

	// Save replaces the snapshot.
	stl.State = model.StateSettled
	sut.Save(stl)

	got, err = sut.ByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.StateSettled, got.State)

	sut.Delete(id)
	_, err = sut.ByID(id)
	assert.ErrorIs(t, err, model.ErrSettlementNotFound)
}

func TestStoreSweepEvictsExpired(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		evicted []uuid.UUID
	)

	sut := NewStore(10*time.Millisecond,
		WithSweepInterval(5*time.Millisecond),
		WithEvictFunc(func(id uuid.UUID) {
			mu.Lock()
			defer mu.Unlock()
			evicted = append(evicted, id)
		}),
	)

	id := uuid.New()
	sut.Save(model.Settlement{ID: id, State: model.StateAwaitingConfirmation})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sut.StartSweeper(ctx)

	require.Eventually(t, func() bool {
		_, err := sut.ByID(id)
		return err != nil
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(evicted) == 1 && evicted[0] == id
	}, time.Second, 5*time.Millisecond)
}

func TestStoreSaveKeepsOriginalCreationTime(t *testing.T) {
	t.Parallel()

	sut := NewStore(25 * time.Millisecond)
	id := uuid.New()
	sut.Save(model.Settlement{ID: id, State: model.StateAwaitingConfirmation})

	// Updates must not reset the TTL clock.
	time.Sleep(15 * time.Millisecond)
	sut.Save(model.Settlement{ID: id, State: model.StateAwaitingConfirmation})
	time.Sleep(15 * time.Millisecond)

	sut.sweep(context.Background())

	_, err := sut.ByID(id)
	assert.ErrorIs(t, err, model.ErrSettlementNotFound)
}
