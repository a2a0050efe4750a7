// Package memory is an in-process store backend. It mirrors the mongo
// backend's semantics and is used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/store"
)

// table keeps documents by id and remembers insertion order,
// which is the natural order the mongo backend returns.
type table[T any] struct {
	docs  map[primitive.ObjectID]*T
	order []primitive.ObjectID
}

func newTable[T any]() *table[T] {
	return &table[T]{docs: make(map[primitive.ObjectID]*T)}
}

func (t *table[T]) put(id primitive.ObjectID, doc *T) {
	if _, ok := t.docs[id]; !ok {
		t.order = append(t.order, id)
	}
	t.docs[id] = doc
}

func (t *table[T]) get(id primitive.ObjectID) (*T, bool) {
	doc, ok := t.docs[id]
	return doc, ok
}

func (t *table[T]) remove(id primitive.ObjectID) bool {
	if _, ok := t.docs[id]; !ok {
		return false
	}
	delete(t.docs, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// each visits documents in insertion order until fn returns false.
func (t *table[T]) each(fn func(*T) bool) {
	for _, id := range t.order {
		if !fn(t.docs[id]) {
			return
		}
	}
}

// Store is a map-backed store.Store.
type Store struct {
	mu         sync.RWMutex
	sites      *table[domain.Website]
	pending    *table[domain.Website]
	users      *table[domain.User]
	subscriber *table[domain.Subscriber]
	favourites *table[domain.Favourite]
}

var _ store.Store = (*Store)(nil)

// New creates an empty memory store.
func New() *Store {
	return &Store{
		sites:      newTable[domain.Website](),
		pending:    newTable[domain.Website](),
		users:      newTable[domain.User](),
		subscriber: newTable[domain.Subscriber](),
		favourites: newTable[domain.Favourite](),
	}
}

func inserted(id primitive.ObjectID) domain.InsertResult {
	return domain.InsertResult{Acknowledged: true, InsertedID: id}
}

func deleted(ok bool) domain.DeleteResult {
	res := domain.DeleteResult{Acknowledged: true}
	if ok {
		res.DeletedCount = 1
	}
	return res
}

func copySites(t *table[domain.Website], keep func(*domain.Website) bool) []*domain.Website {
	out := make([]*domain.Website, 0, len(t.order))
	t.each(func(w *domain.Website) bool {
		if keep == nil || keep(w) {
			c := *w
			out = append(out, &c)
		}
		return true
	})
	return out
}

// ─────────────────────────────────────────────────────────────────
// Approved sites
// ─────────────────────────────────────────────────────────────────

func (s *Store) ListSites(_ context.Context, email string) ([]*domain.Website, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if email == "" {
		return copySites(s.sites, nil), nil
	}
	return copySites(s.sites, func(w *domain.Website) bool { return w.Email == email }), nil
}

func (s *Store) LatestSites(_ context.Context, limit int64) ([]*domain.Website, error) {
	s.mu.RLock()
	all := copySites(s.sites, nil)
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date > all[j].Date })
	if limit > 0 && int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) GetSite(_ context.Context, id string) (*domain.Website, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites.get(oid)
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *site
	return &c, nil
}

func (s *Store) SiteExists(_ context.Context, name, link string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := false
	s.sites.each(func(w *domain.Website) bool {
		if w.Name == name || w.Link == link {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

func (s *Store) CountSites(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.sites.docs)), nil
}

func (s *Store) InsertSite(_ context.Context, site *domain.Website) (domain.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertWebsite(s.sites, site), nil
}

func (s *Store) insertWebsite(t *table[domain.Website], site *domain.Website) domain.InsertResult {
	c := *site
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	site.ID = c.ID
	t.put(c.ID, &c)
	return inserted(c.ID)
}

func (s *Store) UpsertSubmission(_ context.Context, id string, upd domain.SubmissionUpdate) (domain.UpdateResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	site, ok := s.sites.get(oid)
	if !ok {
		s.sites.put(oid, &domain.Website{
			ID:          oid,
			Name:        upd.Name,
			Link:        upd.Link,
			Category:    upd.Category,
			SubCategory: upd.SubCategory,
			Description: upd.Description,
		})
		return domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &oid}, nil
	}

	next := *site
	next.Name, next.Link, next.Category = upd.Name, upd.Link, upd.Category
	next.SubCategory, next.Description = upd.SubCategory, upd.Description
	return s.replaceSite(site, &next), nil
}

func (s *Store) UpdateSite(_ context.Context, id string, upd domain.SiteUpdate) (domain.UpdateResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	site, ok := s.sites.get(oid)
	if !ok {
		return domain.UpdateResult{Acknowledged: true}, nil
	}

	next := *site
	next.Name, next.Link, next.Category = upd.Name, upd.Link, upd.Category
	next.Profession, next.Image, next.Logo = upd.Profession, upd.Image, upd.Logo
	next.Description = upd.Description
	return s.replaceSite(site, &next), nil
}

// replaceSite stores next in place of cur and reports modified only when a field changed.
func (s *Store) replaceSite(cur, next *domain.Website) domain.UpdateResult {
	res := domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if *cur != *next {
		s.sites.put(next.ID, next)
		res.ModifiedCount = 1
	}
	return res
}

func (s *Store) DeleteSite(_ context.Context, id string) (domain.DeleteResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return deleted(s.sites.remove(oid)), nil
}

// ─────────────────────────────────────────────────────────────────
// Pending sites
// ─────────────────────────────────────────────────────────────────

func (s *Store) ListPending(_ context.Context) ([]*domain.Website, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySites(s.pending, nil), nil
}

func (s *Store) InsertPending(_ context.Context, site *domain.Website) (domain.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertWebsite(s.pending, site), nil
}

func (s *Store) ApprovePending(_ context.Context, id string) (*domain.Website, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	site, ok := s.pending.get(oid)
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *site
	s.sites.put(oid, &c)
	s.pending.remove(oid)

	out := c
	return &out, nil
}

func (s *Store) DeletePending(_ context.Context, id string) (domain.DeleteResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return deleted(s.pending.remove(oid)), nil
}

// ─────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────

func (s *Store) EnsureUser(_ context.Context, user *domain.User) (domain.UpdateResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists := false
	s.users.each(func(u *domain.User) bool {
		exists = u.Email == user.Email
		return !exists
	})
	if exists {
		return domain.UpdateResult{Acknowledged: true, MatchedCount: 1}, false, nil
	}

	c := *user
	c.ID = primitive.NewObjectID()
	user.ID = c.ID
	s.users.put(c.ID, &c)
	return domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &c.ID}, true, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.users.order))
	s.users.each(func(u *domain.User) bool {
		c := *u
		out = append(out, &c)
		return true
	})
	return out, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.User
	s.users.each(func(u *domain.User) bool {
		if u.Email == email {
			c := *u
			found = &c
			return false
		}
		return true
	})
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) (domain.DeleteResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return deleted(s.users.remove(oid)), nil
}

// ─────────────────────────────────────────────────────────────────
// Subscribers & favourites
// ─────────────────────────────────────────────────────────────────

func (s *Store) InsertSubscriber(_ context.Context, sub *domain.Subscriber) (domain.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *sub
	c.ID = primitive.NewObjectID()
	sub.ID = c.ID
	s.subscriber.put(c.ID, &c)
	return inserted(c.ID), nil
}

// Subscribers returns every stored subscriber, in insertion order.
func (s *Store) Subscribers() []*domain.Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Subscriber, 0, len(s.subscriber.order))
	s.subscriber.each(func(sub *domain.Subscriber) bool {
		c := *sub
		out = append(out, &c)
		return true
	})
	return out
}

func (s *Store) InsertFavourite(_ context.Context, fav *domain.Favourite) (domain.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup := false
	s.favourites.each(func(f *domain.Favourite) bool {
		dup = f.Email == fav.Email && f.WebsiteID == fav.WebsiteID
		return !dup
	})
	if dup {
		return domain.InsertResult{}, domain.ErrConflict
	}

	c := *fav
	c.ID = primitive.NewObjectID()
	fav.ID = c.ID
	s.favourites.put(c.ID, &c)
	return inserted(c.ID), nil
}

func (s *Store) ListFavourites(_ context.Context, email string) ([]*domain.Favourite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Favourite, 0)
	s.favourites.each(func(f *domain.Favourite) bool {
		if email == "" || f.Email == email {
			c := *f
			out = append(out, &c)
		}
		return true
	})
	return out, nil
}

func (s *Store) DeleteFavourite(_ context.Context, id string) (domain.DeleteResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return deleted(s.favourites.remove(oid)), nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }
