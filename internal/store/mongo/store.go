// Package mongo is the MongoDB backend of store.Store.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/store"
)

// DefaultDatabase is the database holding the five collections.
const DefaultDatabase = "SiteListMyWebsite"

// Store handles MongoDB operations for every collection.
type Store struct {
	client      *mongo.Client
	sites       *mongo.Collection
	pending     *mongo.Collection
	users       *mongo.Collection
	subscribers *mongo.Collection
	favourites  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// NewStore binds a store to database dbName on an already connected client.
func NewStore(client *mongo.Client, dbName string) *Store {
	if dbName == "" {
		dbName = DefaultDatabase
	}
	db := client.Database(dbName)
	return &Store{
		client:      client,
		sites:       db.Collection(store.CollectionAllWebsites),
		pending:     db.Collection(store.CollectionPending),
		users:       db.Collection(store.CollectionUsers),
		subscribers: db.Collection(store.CollectionSubscriber),
		favourites:  db.Collection(store.CollectionFavourite),
	}
}

// ─────────────────────────────────────────────────────────────────
// Approved sites
// ─────────────────────────────────────────────────────────────────

func (s *Store) ListSites(ctx context.Context, email string) ([]*domain.Website, error) {
	return findSites(ctx, s.sites, emailFilter(email))
}

func (s *Store) LatestSites(ctx context.Context, limit int64) ([]*domain.Website, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(limit)
	return findSites(ctx, s.sites, bson.M{}, opts)
}

func (s *Store) GetSite(ctx context.Context, id string) (*domain.Website, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	var site domain.Website
	if err := s.sites.FindOne(ctx, bson.M{"_id": oid}).Decode(&site); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

func (s *Store) SiteExists(ctx context.Context, name, link string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"name": name}, bson.M{"link": link}}}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	err := s.sites.FindOne(ctx, filter, opts).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check site duplicate: %w", err)
	}
}

func (s *Store) CountSites(ctx context.Context) (int64, error) {
	n, err := s.sites.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return n, nil
}

func (s *Store) InsertSite(ctx context.Context, site *domain.Website) (domain.InsertResult, error) {
	return insertWebsite(ctx, s.sites, site)
}

func (s *Store) UpsertSubmission(ctx context.Context, id string, upd domain.SubmissionUpdate) (domain.UpdateResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	res, err := s.sites.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": submissionSet(upd)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to upsert site: %w", err)
	}
	return toUpdateResult(res), nil
}

func (s *Store) UpdateSite(ctx context.Context, id string, upd domain.SiteUpdate) (domain.UpdateResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	res, err := s.sites.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": siteUpdateSet(upd)})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update site: %w", err)
	}
	return toUpdateResult(res), nil
}

func (s *Store) DeleteSite(ctx context.Context, id string) (domain.DeleteResult, error) {
	return deleteByID(ctx, s.sites, id)
}

// ─────────────────────────────────────────────────────────────────
// Pending sites
// ─────────────────────────────────────────────────────────────────

func (s *Store) ListPending(ctx context.Context) ([]*domain.Website, error) {
	return findSites(ctx, s.pending, bson.M{})
}

func (s *Store) InsertPending(ctx context.Context, site *domain.Website) (domain.InsertResult, error) {
	return insertWebsite(ctx, s.pending, site)
}

// ApprovePending copies the pending document into AllWebsites and deletes it
// from Pending inside one transaction, so the move is all-or-nothing.
func (s *Store) ApprovePending(ctx context.Context, id string) (*domain.Website, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return nil, err
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	out, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var site domain.Website
		if err := s.pending.FindOne(sc, bson.M{"_id": oid}).Decode(&site); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get pending site: %w", err)
		}
		if _, err := s.sites.InsertOne(sc, &site); err != nil {
			return nil, fmt.Errorf("failed to insert approved site: %w", err)
		}
		if _, err := s.pending.DeleteOne(sc, bson.M{"_id": oid}); err != nil {
			return nil, fmt.Errorf("failed to delete pending site: %w", err)
		}
		return &site, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Website), nil
}

func (s *Store) DeletePending(ctx context.Context, id string) (domain.DeleteResult, error) {
	return deleteByID(ctx, s.pending, id)
}

// ─────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────

// EnsureUser upserts with $setOnInsert so an existing user is never modified.
// The unique index on email turns a concurrent double insert into a duplicate
// key error, reported as "already exists".
func (s *Store) EnsureUser(ctx context.Context, user *domain.User) (domain.UpdateResult, bool, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": user.Email},
		bson.M{"$setOnInsert": userOnInsert(user)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.UpdateResult{Acknowledged: true, MatchedCount: 1}, false, nil
		}
		return domain.UpdateResult{}, false, fmt.Errorf("failed to upsert user: %w", err)
	}

	out := toUpdateResult(res)
	if out.UpsertedID != nil {
		user.ID = *out.UpsertedID
	}
	return out, res.UpsertedCount > 0, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) (domain.DeleteResult, error) {
	return deleteByID(ctx, s.users, id)
}

// ─────────────────────────────────────────────────────────────────
// Subscribers & favourites
// ─────────────────────────────────────────────────────────────────

func (s *Store) InsertSubscriber(ctx context.Context, sub *domain.Subscriber) (domain.InsertResult, error) {
	res, err := s.subscribers.InsertOne(ctx, sub)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("failed to insert subscriber: %w", err)
	}
	out := toInsertResult(res)
	sub.ID = out.InsertedID
	return out, nil
}

func (s *Store) InsertFavourite(ctx context.Context, fav *domain.Favourite) (domain.InsertResult, error) {
	res, err := s.favourites.InsertOne(ctx, fav)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.InsertResult{}, domain.ErrConflict
		}
		return domain.InsertResult{}, fmt.Errorf("failed to insert favourite: %w", err)
	}
	out := toInsertResult(res)
	fav.ID = out.InsertedID
	return out, nil
}

func (s *Store) ListFavourites(ctx context.Context, email string) ([]*domain.Favourite, error) {
	cur, err := s.favourites.Find(ctx, emailFilter(email))
	if err != nil {
		return nil, fmt.Errorf("failed to list favourites: %w", err)
	}
	favs := make([]*domain.Favourite, 0)
	if err := cur.All(ctx, &favs); err != nil {
		return nil, fmt.Errorf("failed to decode favourites: %w", err)
	}
	return favs, nil
}

func (s *Store) DeleteFavourite(ctx context.Context, id string) (domain.DeleteResult, error) {
	return deleteByID(ctx, s.favourites, id)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ─────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────

func findSites(ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]*domain.Website, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to find sites in %s: %w", coll.Name(), err)
	}
	sites := make([]*domain.Website, 0)
	if err := cur.All(ctx, &sites); err != nil {
		return nil, fmt.Errorf("failed to decode sites from %s: %w", coll.Name(), err)
	}
	return sites, nil
}

func insertWebsite(ctx context.Context, coll *mongo.Collection, site *domain.Website) (domain.InsertResult, error) {
	res, err := coll.InsertOne(ctx, site)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("failed to insert site into %s: %w", coll.Name(), err)
	}
	out := toInsertResult(res)
	site.ID = out.InsertedID
	return out, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) (domain.DeleteResult, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("failed to delete from %s: %w", coll.Name(), err)
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// emailFilter matches everything when email is empty.
func emailFilter(email string) bson.M {
	if email == "" {
		return bson.M{}
	}
	return bson.M{"email": email}
}

func submissionSet(upd domain.SubmissionUpdate) bson.M {
	return bson.M{
		"name":        upd.Name,
		"link":        upd.Link,
		"category":    upd.Category,
		"subCategory": upd.SubCategory,
		"description": upd.Description,
	}
}

func siteUpdateSet(upd domain.SiteUpdate) bson.M {
	return bson.M{
		"name":        upd.Name,
		"link":        upd.Link,
		"category":    upd.Category,
		"profession":  upd.Profession,
		"image":       upd.Image,
		"logo":        upd.Logo,
		"description": upd.Description,
	}
}

// userOnInsert leaves email out: the upsert seeds it from the filter.
func userOnInsert(u *domain.User) bson.M {
	doc := bson.M{"role": u.Role}
	if u.Name != "" {
		doc["name"] = u.Name
	}
	if u.Photo != "" {
		doc["photo"] = u.Photo
	}
	return doc
}

func toInsertResult(res *mongo.InsertOneResult) domain.InsertResult {
	out := domain.InsertResult{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.InsertedID = oid
	}
	return out
}

func toUpdateResult(res *mongo.UpdateResult) domain.UpdateResult {
	out := domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = &oid
	}
	return out
}
