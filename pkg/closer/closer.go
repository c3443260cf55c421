package closer

import (
	"context"
	"errors"
	"sync"

	"github.com/ZIon2025-x/linku-settlement/pkg/logger"
)

type namedCloser struct {
	name string
	fn   func(ctx context.Context) error
}

var (
	mu      sync.Mutex
	closers []namedCloser
	log     *logger.Logger
)

func SetLogger(l *logger.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// AddNamed registers a close function executed during shutdown.
// Closers run in reverse registration order.
func AddNamed(name string, fn func(ctx context.Context) error) {
	mu.Lock()
	defer mu.Unlock()
	closers = append(closers, namedCloser{name: name, fn: fn})
}

func CloseAll(ctx context.Context) error {
	mu.Lock()
	registered := make([]namedCloser, len(closers))
	copy(registered, closers)
	closers = nil
	mu.Unlock()

	var errs []error
	for i := len(registered) - 1; i >= 0; i-- {
		c := registered[i]
		if err := c.fn(ctx); err != nil {
			if log != nil {
				log.Error(ctx, "failed to close "+c.name, logger.ErrorF(err))
			}
			errs = append(errs, err)
			continue
		}
		if log != nil {
			log.Info(ctx, c.name+" closed")
		}
	}

	return errors.Join(errs...)
}
