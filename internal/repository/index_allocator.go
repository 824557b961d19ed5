package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/config"
	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

const (
	// CollectionMetadata holds bookkeeping documents such as the index counter.
	CollectionMetadata = "metadata"
	counterKey         = "user_counter"

	defaultBackoffInitial = 2 * time.Millisecond
	defaultBackoffMax     = 100 * time.Millisecond
)

// AllocationObserver receives allocator outcomes for instrumentation.
type AllocationObserver interface {
	ObserveAllocation(attempts int, conflicts int, err error)
}

// IndexAllocator issues unique, strictly increasing index numbers from the counter document.
type IndexAllocator struct {
	store          docstore.Store
	origin         int64
	maxRetries     int
	backoffInitial time.Duration
	backoffMax     time.Duration
	observer       AllocationObserver
	logger         *zap.Logger
}

// NewIndexAllocator constructs an allocator. The first number issued on an empty store is cfg.Origin.
func NewIndexAllocator(store docstore.Store, cfg config.AllocatorConfig, observer AllocationObserver, logger *zap.Logger) *IndexAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	initial := cfg.BackoffInitial
	if initial <= 0 {
		initial = defaultBackoffInitial
	}
	maxInterval := cfg.BackoffMax
	if maxInterval < initial {
		maxInterval = max(initial, defaultBackoffMax)
	}
	return &IndexAllocator{
		store:          store,
		origin:         cfg.Origin,
		maxRetries:     maxRetries,
		backoffInitial: initial,
		backoffMax:     maxInterval,
		observer:       observer,
		logger:         logger,
	}
}

// newBackOff returns a fresh jittered exponential schedule allowing maxRetries attempts in total.
// Waits stop early when ctx is done.
func (a *IndexAllocator) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.backoffInitial
	b.MaxInterval = a.backoffMax
	b.RandomizationFactor = 1
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.maxRetries-1)), ctx)
}

// Allocate reserves the next index number. The counter write has committed before a number is returned; callers
// racing on the counter back off with jitter and retry until one of them wins each value.
func (a *IndexAllocator) Allocate(ctx context.Context) (int64, error) {
	var (
		attempts  int
		conflicts int
		issued    int64
	)
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		idx, err := a.tryAllocate(ctx)
		if err == nil {
			issued = idx
			return nil
		}
		if !errors.Is(err, docstore.ErrConflict) {
			return backoff.Permanent(fmt.Errorf("allocate index number: %w", err))
		}
		conflicts++
		return err
	}
	notify := func(_ error, wait time.Duration) {
		a.logger.Debug("index counter contended", zap.Int("attempt", attempts), zap.Duration("backoff", wait))
	}

	err := backoff.RetryNotify(operation, a.newBackOff(ctx), notify)
	switch {
	case err == nil:
		a.observe(attempts, conflicts, nil)
		return issued, nil
	case errors.Is(err, docstore.ErrConflict) && ctx.Err() == nil:
		err = appErrors.Wrap(docstore.ErrConflict, appErrors.ErrAllocationConflict.Code, appErrors.ErrAllocationConflict.Status, appErrors.ErrAllocationConflict.Message)
		a.observe(attempts, conflicts, err)
		a.logger.Warn("index allocation retries exhausted", zap.Int("attempts", attempts))
		return 0, err
	default:
		a.observe(attempts, conflicts, err)
		return 0, err
	}
}

func (a *IndexAllocator) tryAllocate(ctx context.Context) (int64, error) {
	var issued int64
	err := a.store.Update(ctx, CollectionMetadata, counterKey, func(current []byte, exists bool) ([]byte, error) {
		next := a.origin
		if exists {
			var counter models.Counter
			if err := json.Unmarshal(current, &counter); err != nil {
				return nil, fmt.Errorf("decode counter: %w", err)
			}
			next = counter.Current + 1
		}
		issued = next
		return json.Marshal(models.Counter{Current: next})
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}

func (a *IndexAllocator) observe(attempts, conflicts int, err error) {
	if a.observer != nil {
		a.observer.ObserveAllocation(attempts, conflicts, err)
	}
}
