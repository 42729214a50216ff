package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ryanalexander/backend/internal/models"
)

type channelRepo struct {
	col *mongo.Collection
}

func NewChannelRepository(db *mongo.Database) ChannelRepository {
	return &channelRepo{col: db.Collection(colChannels)}
}

func (r *channelRepo) Create(ctx context.Context, ch *models.Channel) error {
	_, err := r.col.InsertOne(ctx, ch)
	return wrapWriteErr(err)
}

func (r *channelRepo) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	ch := &models.Channel{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(ch)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *channelRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Channel, error) {
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var channels []models.Channel
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepo) GetByNonce(ctx context.Context, nonce string) (*models.Channel, error) {
	ch := &models.Channel{}
	err := r.col.FindOne(ctx, bson.M{"nonce": nonce}).Decode(ch)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *channelRepo) IDsByGuild(ctx context.Context, guildID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.col.Find(ctx, bson.M{"type": models.ChannelGuild, "guild": guildID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (r *channelRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *channelRepo) DeleteByGuild(ctx context.Context, guildID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"type": models.ChannelGuild, "guild": guildID})
	return err
}
