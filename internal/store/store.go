// Package store defines the document-store contract the directory runs on.
package store

import (
	"context"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
)

// Collection names, shared by every backend.
const (
	CollectionUsers       = "Users"
	CollectionAllWebsites = "AllWebsites"
	CollectionPending     = "Pending"
	CollectionSubscriber  = "Subscriber"
	CollectionFavourite   = "Favourite"
)

// Store is implemented by the mongo and memory backends.
//
// Ids are 24-hex ObjectID strings; a malformed id yields domain.ErrInvalidID.
type Store interface {
	// Approved sites (AllWebsites)
	ListSites(ctx context.Context, email string) ([]*domain.Website, error)
	LatestSites(ctx context.Context, limit int64) ([]*domain.Website, error)
	GetSite(ctx context.Context, id string) (*domain.Website, error)
	SiteExists(ctx context.Context, name, link string) (bool, error)
	CountSites(ctx context.Context) (int64, error)
	InsertSite(ctx context.Context, site *domain.Website) (domain.InsertResult, error)
	UpsertSubmission(ctx context.Context, id string, upd domain.SubmissionUpdate) (domain.UpdateResult, error)
	UpdateSite(ctx context.Context, id string, upd domain.SiteUpdate) (domain.UpdateResult, error)
	DeleteSite(ctx context.Context, id string) (domain.DeleteResult, error)

	// Pending sites
	ListPending(ctx context.Context) ([]*domain.Website, error)
	InsertPending(ctx context.Context, site *domain.Website) (domain.InsertResult, error)
	// ApprovePending moves a pending site into AllWebsites, keeping its id.
	// It returns domain.ErrNotFound when the id is not pending.
	ApprovePending(ctx context.Context, id string) (*domain.Website, error)
	DeletePending(ctx context.Context, id string) (domain.DeleteResult, error)

	// Users
	// EnsureUser creates the user if its email is unknown. created is false
	// when a user with that email already existed; nothing is written then.
	EnsureUser(ctx context.Context, user *domain.User) (res domain.UpdateResult, created bool, err error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (domain.DeleteResult, error)

	// Subscribers
	InsertSubscriber(ctx context.Context, sub *domain.Subscriber) (domain.InsertResult, error)

	// Favourites
	// InsertFavourite returns domain.ErrConflict when (email, websiteId) exists.
	InsertFavourite(ctx context.Context, fav *domain.Favourite) (domain.InsertResult, error)
	ListFavourites(ctx context.Context, email string) ([]*domain.Favourite, error)
	DeleteFavourite(ctx context.Context, id string) (domain.DeleteResult, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
