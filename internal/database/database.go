package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Posts    *mongo.Collection
	Comments *mongo.Collection
}

var _ Store = (*MongoDB)(nil)

// NewMongoDB connects, verifies the deployment answers a ping and returns the blog collections.
func NewMongoDB(ctx context.Context, uri, dbName string, timeout time.Duration) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return FromDatabase(client, client.Database(dbName)), nil
}

// FromDatabase wraps an already connected database.
func FromDatabase(client *mongo.Client, db *mongo.Database) *MongoDB {
	return &MongoDB{
		Client:   client,
		Users:    db.Collection("users"),
		Posts:    db.Collection("posts"),
		Comments: db.Collection("comments"),
	}
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
// Creating an index that already exists with the same definition is a no-op.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	collections := []struct {
		coll    *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{m.Users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		}},
		{m.Posts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "author", Value: 1}}},
		}},
		{m.Comments, []mongo.IndexModel{
			{Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "author", Value: 1}}},
			{Keys: bson.D{{Key: "parent", Value: 1}}},
		}},
	}

	for _, c := range collections {
		if _, err := c.coll.Indexes().CreateMany(ctx, c.indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", c.coll.Name(), err)
		}
	}
	return nil
}
