package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/sitelist/internal/logger"
)

// DefaultWarmInterval is used when no positive interval is configured.
const DefaultWarmInterval = time.Minute

// Warmer refreshes cached listings. *directory.Service implements it.
type Warmer interface {
	WarmCache(ctx context.Context) error
}

// CacheWarmer periodically reloads the public listings into the cache so
// reads keep hitting Redis between mutations.
type CacheWarmer struct {
	warmer   Warmer
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewCacheWarmer creates a cache warmer
func NewCacheWarmer(w Warmer, log logger.Logger, interval time.Duration) *CacheWarmer {
	if interval <= 0 {
		interval = DefaultWarmInterval
	}
	return &CacheWarmer{
		warmer:   w,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start warms the cache once, then every interval until Stop or ctx is done.
func (cw *CacheWarmer) Start(ctx context.Context) error {
	// Run immediately on start
	if err := cw.Warm(ctx); err != nil {
		cw.logger.Warn("initial cache warm-up failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(cw.interval)
	go func() {
		defer close(cw.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cw.Warm(ctx); err != nil {
					cw.logger.Error("cache warm-up failed",
						logger.Error(err))
				}
			case <-cw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the warmer and waits for a running warm-up to finish.
// It must only be called after Start.
func (cw *CacheWarmer) Stop() {
	cw.stopOnce.Do(func() { close(cw.stopCh) })
	<-cw.done
}

// Warm reloads the cached listings once.
func (cw *CacheWarmer) Warm(ctx context.Context) error {
	start := time.Now()
	if err := cw.warmer.WarmCache(ctx); err != nil {
		return err
	}
	cw.logger.Debug("listing cache warmed",
		logger.Duration("took", time.Since(start)))
	return nil
}
