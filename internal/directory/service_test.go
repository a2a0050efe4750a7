package directory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/mq"
	"github.com/MrSnakeDoc/sitelist/internal/store/memory"
)

type fakeCache struct {
	mu       sync.Mutex
	listings map[string][]*domain.Website
	gets     int
	flushes  int
	failGet  bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{listings: make(map[string][]*domain.Website)}
}

func (c *fakeCache) GetSites(_ context.Context, listing string) ([]*domain.Website, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	sites, ok := c.listings[listing]
	return sites, ok, nil
}

func (c *fakeCache) SetSites(_ context.Context, listing string, sites []*domain.Website) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings[listing] = sites
	return nil
}

func (c *fakeCache) Flush(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	c.listings = make(map[string][]*domain.Website)
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *memory.Store, *fakeCache, *fakePublisher) {
	t.Helper()
	st := memory.New()
	cache := newFakeCache()
	pub := &fakePublisher{}
	svc := New(Options{
		Store:  st,
		Cache:  cache,
		Events: pub,
		Now:    func() time.Time { return fixedNow },
	})
	return svc, st, cache, pub
}

func TestSubmitSite(t *testing.T) {
	ctx := context.Background()
	svc, st, _, pub := newService(t)

	if _, err := st.InsertSite(ctx, &domain.Website{Name: "Go", Link: "https://go.dev"}); err != nil {
		t.Fatalf("InsertSite() error = %v", err)
	}

	tests := []struct {
		name    string
		site    domain.Website
		wantErr error
	}{
		{name: "new site", site: domain.Website{Name: "Rust", Link: "https://rust-lang.org"}},
		{name: "same name", site: domain.Website{Name: "Go", Link: "https://golang.org"}, wantErr: domain.ErrConflict},
		{name: "same link", site: domain.Website{Name: "Golang", Link: "https://go.dev"}, wantErr: domain.ErrConflict},
		{name: "already pending is accepted", site: domain.Website{Name: "Rust", Link: "https://rust-lang.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := tt.site
			res, err := svc.SubmitSite(ctx, &site)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SubmitSite() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !res.Acknowledged || res.InsertedID.IsZero() {
				t.Errorf("unexpected result %+v", res)
			}
			if site.Date != "2024-05-01T12:00:00Z" {
				t.Errorf("Date = %q, want stamped date", site.Date)
			}
		})
	}

	pending, _ := svc.PendingSites(ctx)
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}
	if got := pub.published(); len(got) != 2 || got[0] != mq.EventWebsiteSubmitted {
		t.Errorf("published = %v", got)
	}
}

func TestSubmitSiteKeepsProvidedDate(t *testing.T) {
	svc, _, _, _ := newService(t)

	site := &domain.Website{Name: "Go", Link: "https://go.dev", Date: "2020-02-02"}
	if _, err := svc.SubmitSite(context.Background(), site); err != nil {
		t.Fatalf("SubmitSite() error = %v", err)
	}
	if site.Date != "2020-02-02" {
		t.Errorf("Date = %q, want unchanged", site.Date)
	}
}

func TestApproveSiteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, _, cache, pub := newService(t)

	if _, err := svc.AllSites(ctx); err != nil {
		t.Fatalf("AllSites() error = %v", err)
	}
	if _, ok := cache.listings[ListingAll]; !ok {
		t.Fatal("AllSites() did not fill the cache")
	}

	res, err := svc.SubmitSite(ctx, &domain.Website{Name: "Go", Link: "https://go.dev"})
	if err != nil {
		t.Fatalf("SubmitSite() error = %v", err)
	}
	if _, err := svc.ApproveSite(ctx, res.InsertedID.Hex()); err != nil {
		t.Fatalf("ApproveSite() error = %v", err)
	}
	if cache.flushes != 1 {
		t.Errorf("flushes = %d, want 1", cache.flushes)
	}

	all, err := svc.AllSites(ctx)
	if err != nil {
		t.Fatalf("AllSites() error = %v", err)
	}
	if len(all) != 1 || all[0].ID != res.InsertedID {
		t.Errorf("AllSites() = %v, want approved site", all)
	}

	if _, err := svc.ApproveSite(ctx, res.InsertedID.Hex()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second ApproveSite() error = %v, want ErrNotFound", err)
	}

	got := pub.published()
	if got[len(got)-1] != mq.EventWebsiteApproved {
		t.Errorf("last event = %q, want %q", got[len(got)-1], mq.EventWebsiteApproved)
	}
}

func TestCachedListingServedFromCache(t *testing.T) {
	ctx := context.Background()
	svc, _, cache, _ := newService(t)

	cached := []*domain.Website{{Name: "cached"}}
	cache.listings[ListingLatest] = cached

	got, err := svc.LatestSites(ctx)
	if err != nil {
		t.Fatalf("LatestSites() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "cached" {
		t.Errorf("LatestSites() = %v, want cached listing", got)
	}
}

func TestCacheErrorsFallBackToStore(t *testing.T) {
	ctx := context.Background()
	svc, st, cache, _ := newService(t)
	cache.failGet = true

	if _, err := st.InsertSite(ctx, &domain.Website{Name: "Go"}); err != nil {
		t.Fatalf("InsertSite() error = %v", err)
	}

	got, err := svc.AllSites(ctx)
	if err != nil {
		t.Fatalf("AllSites() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("AllSites() = %d sites, want 1", len(got))
	}
}

func TestUpdateSite(t *testing.T) {
	ctx := context.Background()
	svc, st, cache, _ := newService(t)

	res, _ := st.InsertSite(ctx, &domain.Website{Name: "Go", Link: "https://go.dev"})
	id := res.InsertedID.Hex()
	upd := domain.SiteUpdate{Name: "Go", Link: "https://go.dev", Profession: "dev"}

	if _, err := svc.UpdateSite(ctx, id, upd); err != nil {
		t.Fatalf("UpdateSite() error = %v", err)
	}
	if cache.flushes != 1 {
		t.Errorf("flushes = %d, want 1", cache.flushes)
	}

	ur, err := svc.UpdateSite(ctx, id, upd)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unchanged UpdateSite() error = %v, want ErrNotFound", err)
	}
	if ur.MatchedCount != 1 || ur.ModifiedCount != 0 {
		t.Errorf("unchanged UpdateSite() result = %+v", ur)
	}

	missing := "0123456789abcdef01234567"
	if _, err := svc.UpdateSite(ctx, missing, upd); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing UpdateSite() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSite(t *testing.T) {
	ctx := context.Background()
	svc, st, cache, pub := newService(t)

	res, _ := st.InsertSite(ctx, &domain.Website{Name: "Go"})

	dr, err := svc.DeleteSite(ctx, res.InsertedID.Hex())
	if err != nil || dr.DeletedCount != 1 {
		t.Fatalf("DeleteSite() = %+v, %v", dr, err)
	}
	dr, err = svc.DeleteSite(ctx, res.InsertedID.Hex())
	if err != nil || dr.DeletedCount != 0 {
		t.Fatalf("second DeleteSite() = %+v, %v", dr, err)
	}
	if cache.flushes != 1 {
		t.Errorf("flushes = %d, want 1", cache.flushes)
	}
	if got := pub.published(); len(got) != 1 || got[0] != mq.EventWebsiteDeleted {
		t.Errorf("published = %v", got)
	}
}

func TestEnsureUserAndRole(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService(t)

	_, created, err := svc.EnsureUser(ctx, &domain.User{Email: "a@x.io", Role: "admin"})
	if err != nil || !created {
		t.Fatalf("EnsureUser() created = %v, err = %v", created, err)
	}
	_, created, err = svc.EnsureUser(ctx, &domain.User{Email: "a@x.io", Role: "user"})
	if err != nil || created {
		t.Fatalf("second EnsureUser() created = %v, err = %v", created, err)
	}

	role, err := svc.UserRole(ctx, "a@x.io")
	if err != nil || role != "admin" {
		t.Errorf("UserRole() = %q, %v, want admin", role, err)
	}
	if _, err := svc.UserRole(ctx, "nobody@x.io"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UserRole() error = %v, want ErrNotFound", err)
	}
}

func TestFavourites(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pub := newService(t)

	fav := &domain.Favourite{Email: "a@x.io", WebsiteID: "w1", Name: "Go"}
	res, err := svc.AddFavourite(ctx, fav)
	if err != nil {
		t.Fatalf("AddFavourite() error = %v", err)
	}
	if _, err := svc.AddFavourite(ctx, &domain.Favourite{Email: "a@x.io", WebsiteID: "w1"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate AddFavourite() error = %v, want ErrConflict", err)
	}
	if _, err := svc.AddFavourite(ctx, &domain.Favourite{Email: "b@x.io", WebsiteID: "w1"}); err != nil {
		t.Errorf("other user AddFavourite() error = %v", err)
	}

	mine, _ := svc.Favourites(ctx, "a@x.io")
	if len(mine) != 1 {
		t.Errorf("Favourites(a) = %d, want 1", len(mine))
	}
	all, _ := svc.Favourites(ctx, "")
	if len(all) != 2 {
		t.Errorf("Favourites(all) = %d, want 2", len(all))
	}

	if _, err := svc.DeleteFavourite(ctx, res.InsertedID.Hex()); err != nil {
		t.Errorf("DeleteFavourite() error = %v", err)
	}
	if _, err := svc.DeleteFavourite(ctx, res.InsertedID.Hex()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second DeleteFavourite() error = %v, want ErrNotFound", err)
	}

	if got := pub.published(); len(got) != 2 {
		t.Errorf("published = %v, want 2 favourite events", got)
	}
}

// recordingStore remembers the ids handed to the insert calls it wraps.
type recordingStore struct {
	*memory.Store
	favouriteID  primitive.ObjectID
	subscriberID primitive.ObjectID
}

func (s *recordingStore) InsertFavourite(ctx context.Context, fav *domain.Favourite) (domain.InsertResult, error) {
	s.favouriteID = fav.ID
	return s.Store.InsertFavourite(ctx, fav)
}

func (s *recordingStore) InsertSubscriber(ctx context.Context, sub *domain.Subscriber) (domain.InsertResult, error) {
	s.subscriberID = sub.ID
	return s.Store.InsertSubscriber(ctx, sub)
}

func TestCallerIDsAreDiscarded(t *testing.T) {
	ctx := context.Background()
	st := &recordingStore{Store: memory.New()}
	svc := New(Options{Store: st})

	callerID, err := primitive.ObjectIDFromHex("0123456789abcdef01234567")
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.AddFavourite(ctx, &domain.Favourite{ID: callerID, Email: "a@x.io", WebsiteID: "w1"})
	if err != nil {
		t.Fatalf("AddFavourite() error = %v", err)
	}
	if !st.favouriteID.IsZero() {
		t.Errorf("InsertFavourite got id %s, want zero", st.favouriteID.Hex())
	}
	if res.InsertedID == callerID || res.InsertedID.IsZero() {
		t.Errorf("favourite InsertedID = %s, want a store-generated id", res.InsertedID.Hex())
	}

	res, err = svc.Subscribe(ctx, &domain.Subscriber{ID: callerID, Email: "a@x.io"})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !st.subscriberID.IsZero() {
		t.Errorf("InsertSubscriber got id %s, want zero", st.subscriberID.Hex())
	}
	if res.InsertedID == callerID {
		t.Errorf("subscriber InsertedID = caller id %s", callerID.Hex())
	}
}

// slowListStore runs onList after reading the listing, before it is returned.
type slowListStore struct {
	*memory.Store
	onList func()
}

func (s *slowListStore) ListSites(ctx context.Context, email string) ([]*domain.Website, error) {
	sites, err := s.Store.ListSites(ctx, email)
	if f := s.onList; f != nil {
		s.onList = nil
		f()
	}
	return sites, err
}

func TestStaleListingNotCachedAfterFlush(t *testing.T) {
	ctx := context.Background()
	st := &slowListStore{Store: memory.New()}
	cache := newFakeCache()
	svc := New(Options{Store: st, Cache: cache})

	res, err := st.InsertSite(ctx, &domain.Website{Name: "Go"})
	if err != nil {
		t.Fatalf("InsertSite() error = %v", err)
	}
	st.onList = func() {
		if _, err := svc.DeleteSite(ctx, res.InsertedID.Hex()); err != nil {
			t.Errorf("DeleteSite() error = %v", err)
		}
	}

	if _, err := svc.AllSites(ctx); err != nil {
		t.Fatalf("AllSites() error = %v", err)
	}
	if _, ok := cache.listings[ListingAll]; ok {
		t.Fatal("listing loaded before the delete was cached")
	}

	got, err := svc.AllSites(ctx)
	if err != nil {
		t.Fatalf("AllSites() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("AllSites() = %d sites, want 0", len(got))
	}
	if sites, ok := cache.listings[ListingAll]; !ok || len(sites) != 0 {
		t.Errorf("cached all = %v, %v, want empty listing", sites, ok)
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService(t)

	sites := []*domain.Website{{Name: "Go"}, {Name: "Rust", Date: "2020-01-01"}}
	n, err := svc.Seed(ctx, sites)
	if err != nil || n != 2 {
		t.Fatalf("Seed() = %d, %v, want 2", n, err)
	}
	if sites[0].Date == "" {
		t.Error("Seed() did not stamp missing date")
	}

	n, err = svc.Seed(ctx, []*domain.Website{{Name: "Zig"}})
	if err != nil || n != 0 {
		t.Errorf("second Seed() = %d, %v, want 0", n, err)
	}
}

func TestWarmCache(t *testing.T) {
	ctx := context.Background()
	svc, st, cache, _ := newService(t)

	for _, d := range []string{"2020-01-01", "2021-01-01", "2022-01-01", "2023-01-01", "2024-01-01"} {
		_, _ = st.InsertSite(ctx, &domain.Website{Name: d, Date: d})
	}

	if err := svc.WarmCache(ctx); err != nil {
		t.Fatalf("WarmCache() error = %v", err)
	}
	if got := len(cache.listings[ListingAll]); got != 5 {
		t.Errorf("cached all = %d, want 5", got)
	}
	latest := cache.listings[ListingLatest]
	if len(latest) != LatestLimit || latest[0].Date != "2024-01-01" {
		t.Errorf("cached latest = %v", latest)
	}
}

func TestServiceWithoutCache(t *testing.T) {
	svc := New(Options{Store: memory.New()})

	if svc.CacheEnabled() {
		t.Error("CacheEnabled() = true without a cache")
	}
	if err := svc.WarmCache(context.Background()); err != nil {
		t.Errorf("WarmCache() error = %v", err)
	}
	if _, err := svc.LatestSites(context.Background()); err != nil {
		t.Errorf("LatestSites() error = %v", err)
	}
}
