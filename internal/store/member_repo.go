package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ryanalexander/backend/internal/models"
)

type memberRepo struct {
	col *mongo.Collection
}

func NewMemberRepository(db *mongo.Database) MemberRepository {
	return &memberRepo{col: db.Collection(colMembers)}
}

// Create inserts a membership record. The composite _id makes a second insert
// for the same (guild, user) pair fail with ErrDuplicateKey; two concurrent
// joins both passing the existence check resolve here, not in the engine.
func (r *memberRepo) Create(ctx context.Context, member *models.Member) error {
	_, err := r.col.InsertOne(ctx, member)
	return wrapWriteErr(err)
}

func (r *memberRepo) GetByGuildAndUser(ctx context.Context, guildID, userID string) (*models.Member, error) {
	member := &models.Member{}
	err := r.col.FindOne(ctx, bson.M{"_id.guild": guildID, "_id.user": userID}).Decode(member)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepo) GetByGuildID(ctx context.Context, guildID string) ([]models.Member, error) {
	cursor, err := r.col.Find(ctx, bson.M{"_id.guild": guildID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// GuildIDsByUser returns the ids of every guild the user is a member of.
// The gateway uses this on identify to subscribe the session.
func (r *memberRepo) GuildIDsByUser(ctx context.Context, userID string) ([]string, error) {
	cursor, err := r.col.Find(ctx, bson.M{"_id.user": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID.GuildID
	}
	return ids, nil
}

func (r *memberRepo) Delete(ctx context.Context, guildID, userID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id.guild": guildID, "_id.user": userID})
	return err
}

func (r *memberRepo) DeleteByGuild(ctx context.Context, guildID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"_id.guild": guildID})
	return err
}
