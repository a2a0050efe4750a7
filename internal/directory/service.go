// Package directory implements the website-directory operations on top of a
// store, an optional listing cache and an event publisher.
package directory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
	"github.com/MrSnakeDoc/sitelist/internal/mq"
	"github.com/MrSnakeDoc/sitelist/internal/store"
)

// LatestLimit is the fixed size of the latest-sites listing.
const LatestLimit = 4

// Cached listings.
const (
	ListingAll    = "sites:all"
	ListingLatest = "sites:latest"
)

// ListingCache caches public listings. Errors are logged, never returned to callers.
type ListingCache interface {
	GetSites(ctx context.Context, listing string) ([]*domain.Website, bool, error)
	SetSites(ctx context.Context, listing string, sites []*domain.Website) error
	Flush(ctx context.Context) error
}

// Options configures a Service. Only Store is required.
type Options struct {
	Store  store.Store
	Cache  ListingCache  // nil disables caching
	Events mq.Publisher  // nil discards events
	Logger logger.Logger // nil discards logs
	Now    func() time.Time
}

// Service runs every directory operation. It holds no request state and is
// safe for concurrent use.
type Service struct {
	store  store.Store
	cache  ListingCache
	events mq.Publisher
	log    logger.Logger
	now    func() time.Time

	// gen counts invalidations. A listing loaded under an older generation
	// is not written back to the cache. fill orders those writes against Flush.
	gen  atomic.Uint64
	fill sync.RWMutex
}

func New(opts Options) *Service {
	s := &Service{
		store:  opts.Store,
		cache:  opts.Cache,
		events: opts.Events,
		log:    opts.Logger,
		now:    opts.Now,
	}
	if s.events == nil {
		s.events = mq.Noop{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CacheEnabled reports whether listings are cached.
func (s *Service) CacheEnabled() bool { return s.cache != nil }

// Ready pings the store.
func (s *Service) Ready(ctx context.Context) error { return s.store.Ping(ctx) }

// cached serves listing from the cache, falling back to load and filling the cache.
func (s *Service) cached(ctx context.Context, listing string, load func() ([]*domain.Website, error)) ([]*domain.Website, error) {
	if s.cache == nil {
		return load()
	}

	sites, ok, err := s.cache.GetSites(ctx, listing)
	if err != nil {
		s.log.Warn("listing cache read failed",
			logger.String("listing", listing),
			logger.Error(err))
	} else if ok {
		return sites, nil
	}

	gen := s.gen.Load()
	sites, err = load()
	if err != nil {
		return nil, err
	}

	if err := s.fillCache(ctx, gen, map[string][]*domain.Website{listing: sites}); err != nil {
		s.log.Warn("listing cache write failed",
			logger.String("listing", listing),
			logger.Error(err))
	}
	return sites, nil
}

// fillCache writes listings loaded under generation gen. It writes nothing
// when an invalidation happened since.
func (s *Service) fillCache(ctx context.Context, gen uint64, listings map[string][]*domain.Website) error {
	s.fill.RLock()
	defer s.fill.RUnlock()

	if s.gen.Load() != gen {
		s.log.Debug("listing changed while loading, cache fill skipped")
		return nil
	}
	for listing, sites := range listings {
		if err := s.cache.SetSites(ctx, listing, sites); err != nil {
			return err
		}
	}
	return nil
}

// invalidate drops cached listings after AllWebsites changed.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	s.fill.Lock()
	defer s.fill.Unlock()

	s.gen.Add(1)
	if err := s.cache.Flush(ctx); err != nil {
		s.log.Warn("listing cache flush failed", logger.Error(err))
	}
}

// publish emits an event, best effort.
func (s *Service) publish(ctx context.Context, key string, v any) {
	if err := s.events.PublishJSON(ctx, key, v); err != nil {
		s.log.Warn("event publish failed",
			logger.String("event", key),
			logger.Error(err))
	}
}

// WarmCache reloads every cached listing from the store.
func (s *Service) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	gen := s.gen.Load()
	all, err := s.store.ListSites(ctx, "")
	if err != nil {
		return err
	}
	latest, err := s.store.LatestSites(ctx, LatestLimit)
	if err != nil {
		return err
	}

	return s.fillCache(ctx, gen, map[string][]*domain.Website{
		ListingAll:    all,
		ListingLatest: latest,
	})
}
