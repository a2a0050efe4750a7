package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexSpec pairs a collection with the indexes it needs.
type indexSpec struct {
	coll   *mongo.Collection
	models []mongo.IndexModel
}

func (s *Store) indexSpecs() []indexSpec {
	return []indexSpec{
		{
			coll: s.users,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true),
			}},
		},
		{
			coll: s.favourites,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "email", Value: 1}, {Key: "websiteId", Value: 1}},
				Options: options.Index().SetName("uniq_email_website").SetUnique(true),
			}},
		},
		{
			coll: s.sites,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "date", Value: -1}},
					Options: options.Index().SetName("date_desc"),
				},
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("email"),
				},
			},
		},
	}
}

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
// A unique index fails to build when existing data already violates it; the
// error names the collection so the duplicates can be cleaned up.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, spec := range s.indexSpecs() {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}
