package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names. Every repository writes to exactly one of these; there
// are no cross-collection transactions anywhere in the codebase.
const (
	colUsers    = "users"
	colGuilds   = "guilds"
	colChannels = "channels"
	colMembers  = "members"
	colMessages = "messages"
)

// Connect opens a MongoDB client and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(pingCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the write paths rely on. The
// members collection needs no uniqueness beyond the implicit _id index: its
// _id is the composite {guild, user} document, which Mongo keeps unique for
// us. The extra _id.user index serves the by-user guild listing.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		{colGuilds, mongo.IndexModel{
			Keys:    bson.D{{Key: "nonce", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		}},
		{colChannels, mongo.IndexModel{
			Keys:    bson.D{{Key: "nonce", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		}},
		{colChannels, mongo.IndexModel{Keys: bson.D{{Key: "guild", Value: 1}}}},
		{colGuilds, mongo.IndexModel{Keys: bson.D{{Key: "invites.code", Value: 1}}}},
		{colMessages, mongo.IndexModel{Keys: bson.D{{Key: "channel", Value: 1}}}},
		{colMembers, mongo.IndexModel{Keys: bson.D{{Key: "_id.user", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("creating index on %s: %w", idx.collection, err)
		}
	}
	return nil
}

// wrapWriteErr maps driver duplicate-key failures to ErrDuplicateKey so the
// service layer can turn them into conflicts.
func wrapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}
