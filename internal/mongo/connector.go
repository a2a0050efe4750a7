package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MrSnakeDoc/sitelist/internal/logger"
	"github.com/MrSnakeDoc/sitelist/internal/retry"
)

// ConnectOptions defines the MongoDB client and its startup retry behavior.
type ConnectOptions struct {
	URI      string       // mongodb:// or mongodb+srv:// connection string
	AppName  string       // reported to the server in the handshake
	PoolSize uint64       // max connections in the pool (0 = driver default)
	Retry    retry.Policy // how long to wait for the primary at startup
}

// New creates a MongoDB client pinned to Stable API v1 (strict) and pings the
// primary until it answers or the retry budget is spent.
func New(opts ConnectOptions, log logger.Logger) (*mongo.Client, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("mongo URI is empty")
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerAPIOptions(serverAPI).
		SetAppName(opts.AppName)
	if opts.PoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.PoolSize)
	}

	// Connect only validates options and starts monitoring; Ping does the round trip.
	client, err := mongo.Connect(context.Background(), clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	err = retry.Probe("mongo", opts.Retry, log, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
