package reconciler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

type fakeFees struct {
	calls    atomic.Int32
	statuses []string
	err      error
	failN    int32 // first failN calls return err, then statuses
}

func (f *fakeFees) SessionStatus(ctx context.Context, sessionID string) (string, error) {
	n := f.calls.Add(1)
	if f.err != nil && n <= f.failN {
		return "", f.err
	}
	idx := int(n) - int(f.failN) - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return f.statuses[idx], nil
}

func TestReconcilerResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		fees        *fakeFees
		submittedAt time.Time

		want    model.Outcome
		wantErr bool
	}{
		{
			name:        "finalized resolves to settled",
			fees:        &fakeFees{statuses: []string{"finalized"}},
			submittedAt: time.Now(),
			want:        model.OutcomeSettled,
		},
		{
			name:        "failed resolves to failed",
			fees:        &fakeFees{statuses: []string{"failed"}},
			submittedAt: time.Now(),
			want:        model.OutcomeFailed,
		},
		{
			name:        "pending inside the window stays pending",
			fees:        &fakeFees{statuses: []string{"pending"}},
			submittedAt: time.Now(),
			want:        model.OutcomePendingReconciliation,
		},
		{
			name:        "pending past the window is failed",
			fees:        &fakeFees{statuses: []string{"pending"}},
			submittedAt: time.Now().Add(-6 * time.Minute),
			want:        model.OutcomeFailed,
		},
		{
			name:        "unknown status is an error",
			fees:        &fakeFees{statuses: []string{"garbled"}},
			submittedAt: time.Now(),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sut := NewReconciler(tt.fees, 5*time.Minute, time.Millisecond)

			got, err := sut.Resolve(context.Background(), "sess_1", tt.submittedAt)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconcilerRetriesTransportErrors(t *testing.T) {
	t.Parallel()

	fees := &fakeFees{
		statuses: []string{"finalized"},
		err:      errors.New("connection refused"),
		failN:    2,
	}
	sut := NewReconciler(fees, 5*time.Minute, time.Millisecond)

	got, err := sut.Resolve(context.Background(), "sess_1", time.Now())

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSettled, got)
	assert.EqualValues(t, 3, fees.calls.Load())
}

func TestReconcilerGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	fees := &fakeFees{
		statuses: []string{"finalized"},
		err:      errors.New("connection refused"),
		failN:    10,
	}
	sut := NewReconciler(fees, 5*time.Minute, time.Millisecond)

	_, err := sut.Resolve(context.Background(), "sess_1", time.Now())

	require.Error(t, err)
	assert.EqualValues(t, 1+maxStatusRetries, fees.calls.Load())
}
