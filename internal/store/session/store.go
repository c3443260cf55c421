package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
	"github.com/ZIon2025-x/linku-settlement/pkg/logger"
)

const defaultSweepInterval = time.Minute

type entry struct {
	settlement model.Settlement
	createdAt  time.Time
}

// store keeps checkout sessions in memory for the lifetime of the
// checkout attempt. The authoritative state of funds capture lives in
// the gateway and the backend ledger; nothing here survives a restart,
// and stale sessions are swept after the TTL.
type store struct {
	mu            sync.RWMutex
	data          map[uuid.UUID]entry
	ttl           time.Duration
	sweepInterval time.Duration
	onEvict       func(id uuid.UUID)
}

type Option func(*store)

func WithSweepInterval(d time.Duration) Option {
	return func(s *store) { s.sweepInterval = d }
}

// WithEvictFunc registers a callback invoked for every swept session,
// so owners of per-session resources can release them.
func WithEvictFunc(fn func(id uuid.UUID)) Option {
	return func(s *store) { s.onEvict = fn }
}

func NewStore(ttl time.Duration, opts ...Option) *store {
	s := &store{
		data:          make(map[uuid.UUID]entry),
		ttl:           ttl,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a snapshot of the settlement, replacing any previous one.
func (s *store) Save(stl model.Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[stl.ID]
	if !ok {
		e.createdAt = time.Now()
	}
	e.settlement = stl
	s.data[stl.ID] = e
}

func (s *store) ByID(id uuid.UUID) (model.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[id]
	if !ok {
		return model.Settlement{}, model.ErrSettlementNotFound
	}
	return e.settlement, nil
}

func (s *store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
}

// StartSweeper runs TTL eviction until ctx is cancelled.
func (s *store) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *store) sweep(ctx context.Context) {
	s.mu.Lock()

	now := time.Now()
	evicted := make([]uuid.UUID, 0)
	for id, e := range s.data {
		if now.Sub(e.createdAt) > s.ttl {
			delete(s.data, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		if s.onEvict != nil {
			s.onEvict(id)
		}
	}

	if len(evicted) > 0 {
		logger.Info(ctx, "swept expired checkout sessions", logger.Int("evicted", len(evicted)))
	}
}
