package directory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
	"github.com/MrSnakeDoc/sitelist/internal/mq"
)

// EnsureUser creates the user unless its email is already registered.
// created is false when the user existed; nothing is modified then.
func (s *Service) EnsureUser(ctx context.Context, user *domain.User) (domain.UpdateResult, bool, error) {
	res, created, err := s.store.EnsureUser(ctx, user)
	if err != nil {
		return domain.UpdateResult{}, false, err
	}
	if created {
		s.log.Info("user created",
			logger.String("email", user.Email),
			logger.String("role", user.Role))
	}
	return res, created, nil
}

func (s *Service) Users(ctx context.Context) ([]*domain.User, error) {
	return s.store.ListUsers(ctx)
}

// UserRole returns the role of the user registered with email.
func (s *Service) UserRole(ctx context.Context, email string) (string, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (domain.DeleteResult, error) {
	return s.store.DeleteUser(ctx, id)
}

// Subscribe records a newsletter sign-up. Repeated emails are stored again.
func (s *Service) Subscribe(ctx context.Context, sub *domain.Subscriber) (domain.InsertResult, error) {
	sub.ID = primitive.NilObjectID
	res, err := s.store.InsertSubscriber(ctx, sub)
	if err != nil {
		return domain.InsertResult{}, err
	}
	s.publish(ctx, mq.EventSubscriberCreated, map[string]string{
		"id":    res.InsertedID.Hex(),
		"email": sub.Email,
	})
	return res, nil
}

// AddFavourite saves a site for a user. It fails with domain.ErrConflict when
// the user already saved that website id. Any id set by the caller is
// discarded; the store assigns one.
func (s *Service) AddFavourite(ctx context.Context, fav *domain.Favourite) (domain.InsertResult, error) {
	fav.ID = primitive.NilObjectID
	res, err := s.store.InsertFavourite(ctx, fav)
	if err != nil {
		return domain.InsertResult{}, err
	}
	s.publish(ctx, mq.EventFavouriteAdded, fav)
	return res, nil
}

// Favourites lists the favourites of email, or all when email is empty.
func (s *Service) Favourites(ctx context.Context, email string) ([]*domain.Favourite, error) {
	return s.store.ListFavourites(ctx, email)
}

// DeleteFavourite removes a favourite, failing with domain.ErrNotFound when
// the id matched nothing.
func (s *Service) DeleteFavourite(ctx context.Context, id string) (domain.DeleteResult, error) {
	res, err := s.store.DeleteFavourite(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	if res.DeletedCount == 0 {
		return res, domain.ErrNotFound
	}
	return res, nil
}
