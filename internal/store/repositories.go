package store

import (
	"context"
	"errors"

	"github.com/ryanalexander/backend/internal/models"
)

// ErrDuplicateKey is returned when an insert violates a unique index. For
// membership records the unique index on the composite _id is the only
// protection against two racing joins, so callers must treat this error as a
// conflict rather than an infrastructure failure.
var ErrDuplicateKey = errors.New("duplicate key")

type ChannelRepository interface {
	Create(ctx context.Context, ch *models.Channel) error
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Channel, error)
	GetByNonce(ctx context.Context, nonce string) (*models.Channel, error)
	IDsByGuild(ctx context.Context, guildID string) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeleteByGuild(ctx context.Context, guildID string) error
}

type GuildRepository interface {
	Create(ctx context.Context, guild *models.Guild) error
	GetByID(ctx context.Context, id string) (*models.Guild, error)
	GetByNonce(ctx context.Context, nonce string) (*models.Guild, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Guild, error)
	AddChannel(ctx context.Context, guildID, channelID string) error
	PushInvite(ctx context.Context, guildID string, invite models.Invite) error
	PullInvite(ctx context.Context, guildID, code string) error
	PushBan(ctx context.Context, guildID string, ban models.Ban) error
	PullBan(ctx context.Context, guildID, userID string) error
	Delete(ctx context.Context, id string) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByGuildAndUser(ctx context.Context, guildID, userID string) (*models.Member, error)
	GetByGuildID(ctx context.Context, guildID string) ([]models.Member, error)
	GuildIDsByUser(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, guildID, userID string) error
	DeleteByGuild(ctx context.Context, guildID string) error
}

// MessageRepository is intentionally delete-only: messages enter the system
// through other surfaces and appear here solely as guild-delete targets.
type MessageRepository interface {
	DeleteByChannelIDs(ctx context.Context, channelIDs []string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
