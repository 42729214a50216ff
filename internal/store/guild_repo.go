package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ryanalexander/backend/internal/models"
)

type guildRepo struct {
	col *mongo.Collection
}

func NewGuildRepository(db *mongo.Database) GuildRepository {
	return &guildRepo{col: db.Collection(colGuilds)}
}

func (r *guildRepo) Create(ctx context.Context, guild *models.Guild) error {
	_, err := r.col.InsertOne(ctx, guild)
	return wrapWriteErr(err)
}

func (r *guildRepo) findOne(ctx context.Context, filter bson.M) (*models.Guild, error) {
	guild := &models.Guild{}
	err := r.col.FindOne(ctx, filter).Decode(guild)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return guild, nil
}

func (r *guildRepo) GetByID(ctx context.Context, id string) (*models.Guild, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *guildRepo) GetByNonce(ctx context.Context, nonce string) (*models.Guild, error) {
	return r.findOne(ctx, bson.M{"nonce": nonce})
}

func (r *guildRepo) GetByInviteCode(ctx context.Context, code string) (*models.Guild, error) {
	return r.findOne(ctx, bson.M{"invites.code": code})
}

// AddChannel appends a channel id to the guild's ordered channel list.
// $addToSet keeps a retried append from double-listing the channel.
func (r *guildRepo) AddChannel(ctx context.Context, guildID, channelID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": guildID},
		bson.M{"$addToSet": bson.M{"channels": channelID}},
	)
	return err
}

func (r *guildRepo) PushInvite(ctx context.Context, guildID string, invite models.Invite) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": guildID},
		bson.M{"$push": bson.M{"invites": invite}},
	)
	return wrapWriteErr(err)
}

func (r *guildRepo) PullInvite(ctx context.Context, guildID, code string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": guildID},
		bson.M{"$pull": bson.M{"invites": bson.M{"code": code}}},
	)
	return err
}

func (r *guildRepo) PushBan(ctx context.Context, guildID string, ban models.Ban) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": guildID},
		bson.M{"$push": bson.M{"bans": ban}},
	)
	return err
}

func (r *guildRepo) PullBan(ctx context.Context, guildID, userID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": guildID},
		bson.M{"$pull": bson.M{"bans": bson.M{"id": userID}}},
	)
	return err
}

func (r *guildRepo) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
