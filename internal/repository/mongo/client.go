// Package mongo implements the user store on MongoDB.
package mongo

import (
	"context"
	"fmt"

	"github.com/Rrens/auth-service/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client wraps the MongoDB client and the users collection
type Client struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewClient connects to MongoDB and verifies the connection
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "users"
	}

	return &Client{
		client: client,
		users:  client.Database(cfg.Database).Collection(collection),
	}, nil
}

// Users returns the users collection
func (c *Client) Users() *mongo.Collection {
	return c.users
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	if c.client != nil {
		return c.client.Disconnect(ctx)
	}
	return nil
}
