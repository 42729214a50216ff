package store

import (
	"context"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ryanalexander/backend/internal/ulid"
)

// testDB returns a handle to the test database. It skips the test if
// MONGO_URI is not set.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := Connect(ctx, uri)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("backend_test")
	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensuring indexes: %v", err)
	}
	return db
}

var testIDs = ulid.NewGenerator()

func nextID() string {
	return testIDs.Generate()
}
