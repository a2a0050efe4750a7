package directory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MrSnakeDoc/sitelist/internal/domain"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
	"github.com/MrSnakeDoc/sitelist/internal/mq"
)

// AllSites lists every approved site.
func (s *Service) AllSites(ctx context.Context) ([]*domain.Website, error) {
	return s.cached(ctx, ListingAll, func() ([]*domain.Website, error) {
		return s.store.ListSites(ctx, "")
	})
}

// PersonalSites lists approved sites submitted by email, or all when email is empty.
func (s *Service) PersonalSites(ctx context.Context, email string) ([]*domain.Website, error) {
	return s.store.ListSites(ctx, email)
}

// LatestSites lists the LatestLimit most recent approved sites, newest first.
func (s *Service) LatestSites(ctx context.Context) ([]*domain.Website, error) {
	return s.cached(ctx, ListingLatest, func() ([]*domain.Website, error) {
		return s.store.LatestSites(ctx, LatestLimit)
	})
}

func (s *Service) PendingSites(ctx context.Context) ([]*domain.Website, error) {
	return s.store.ListPending(ctx)
}

func (s *Service) Site(ctx context.Context, id string) (*domain.Website, error) {
	return s.store.GetSite(ctx, id)
}

// SubmitSite queues a site for approval. It fails with domain.ErrConflict when
// an approved site already has the same name or link. Pending sites are not
// checked, so the same site may be queued twice.
func (s *Service) SubmitSite(ctx context.Context, site *domain.Website) (domain.InsertResult, error) {
	exists, err := s.store.SiteExists(ctx, site.Name, site.Link)
	if err != nil {
		return domain.InsertResult{}, err
	}
	if exists {
		return domain.InsertResult{}, domain.ErrConflict
	}

	site.ID = primitive.NilObjectID
	site.StampDate(s.now())

	res, err := s.store.InsertPending(ctx, site)
	if err != nil {
		return domain.InsertResult{}, err
	}

	s.log.Info("website submitted",
		logger.String("id", res.InsertedID.Hex()),
		logger.String("name", site.Name),
		logger.String("email", site.Email))
	s.publish(ctx, mq.EventWebsiteSubmitted, site)
	return res, nil
}

// UpsertSubmission writes the submission field set on an approved site,
// creating it when the id is unknown.
func (s *Service) UpsertSubmission(ctx context.Context, id string, upd domain.SubmissionUpdate) (domain.UpdateResult, error) {
	res, err := s.store.UpsertSubmission(ctx, id, upd)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	if res.ModifiedCount > 0 || res.UpsertedCount > 0 {
		s.invalidate(ctx)
	}
	return res, nil
}

// UpdateSite writes the admin field set on an approved site. It returns
// domain.ErrNotFound, along with the store result, when nothing matched or
// nothing changed.
func (s *Service) UpdateSite(ctx context.Context, id string, upd domain.SiteUpdate) (domain.UpdateResult, error) {
	res, err := s.store.UpdateSite(ctx, id, upd)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	if res.MatchedCount == 0 || res.ModifiedCount == 0 {
		return res, domain.ErrNotFound
	}
	s.invalidate(ctx)
	return res, nil
}

// ApproveSite moves a pending site into the public listing.
func (s *Service) ApproveSite(ctx context.Context, id string) (*domain.Website, error) {
	site, err := s.store.ApprovePending(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("website approved",
		logger.String("id", site.ID.Hex()),
		logger.String("name", site.Name))
	s.publish(ctx, mq.EventWebsiteApproved, site)
	return site, nil
}

func (s *Service) DeleteSite(ctx context.Context, id string) (domain.DeleteResult, error) {
	res, err := s.store.DeleteSite(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	if res.DeletedCount > 0 {
		s.invalidate(ctx)
		s.publish(ctx, mq.EventWebsiteDeleted, map[string]string{"id": id})
	}
	return res, nil
}

func (s *Service) DeletePendingSite(ctx context.Context, id string) (domain.DeleteResult, error) {
	return s.store.DeletePending(ctx, id)
}

// Seed inserts sites into an empty AllWebsites collection. It returns the
// number of inserted sites, 0 when the collection already had documents.
func (s *Service) Seed(ctx context.Context, sites []*domain.Website) (int, error) {
	n, err := s.store.CountSites(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("skipping seed, sites already present", logger.Int64("count", n))
		return 0, nil
	}

	inserted := 0
	for _, site := range sites {
		site.StampDate(s.now())
		if _, err := s.store.InsertSite(ctx, site); err != nil {
			return inserted, err
		}
		inserted++
	}
	if inserted > 0 {
		s.invalidate(ctx)
	}
	return inserted, nil
}
