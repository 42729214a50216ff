package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type messageRepo struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepo{col: db.Collection(colMessages)}
}

func (r *messageRepo) DeleteByChannelIDs(ctx context.Context, channelIDs []string) error {
	if len(channelIDs) == 0 {
		return nil
	}
	_, err := r.col.DeleteMany(ctx, bson.M{"channel": bson.M{"$in": channelIDs}})
	return err
}
