package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrSnakeDoc/sitelist/internal/store"
	"github.com/MrSnakeDoc/sitelist/internal/store/storetest"
)

// TestStoreContract runs against a real server. Approval uses transactions,
// so the server must be a replica set (a single-node one is enough):
//
//	SITELIST_TEST_MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0 go test ./internal/store/mongo/
func TestStoreContract(t *testing.T) {
	uri := os.Getenv("SITELIST_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SITELIST_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	storetest.Run(t, func(t *testing.T) store.Store {
		dbName := "sitelist_test_" + primitive.NewObjectID().Hex()
		s := NewStore(client, dbName)
		if err := s.EnsureIndexes(context.Background()); err != nil {
			t.Fatalf("EnsureIndexes() error = %v", err)
		}
		t.Cleanup(func() { _ = client.Database(dbName).Drop(context.Background()) })
		return s
	})
}
