package service

import (
	"context"

	"github.com/ryanalexander/backend/internal/models"
	"github.com/ryanalexander/backend/internal/permissions"
	"github.com/ryanalexander/backend/internal/store"
)

// PermissionChecker is the capability gate every mutating operation calls
// before its first write. It answers from the guild document alone: the owner
// bypasses the mask, everyone else gets the guild's default permission set.
type PermissionChecker struct {
	guilds  store.GuildRepository
	members store.MemberRepository
}

// NewPermissionChecker creates a PermissionChecker.
func NewPermissionChecker(guilds store.GuildRepository, members store.MemberRepository) *PermissionChecker {
	return &PermissionChecker{guilds: guilds, members: members}
}

// Require verifies the user holds perm in the guild and returns the guild
// document for the caller to reuse. A non-member gets not-found rather than
// forbidden so membership is not leaked.
func (p *PermissionChecker) Require(ctx context.Context, guildID, userID string, perm permissions.Permission) (*models.Guild, error) {
	guild, err := p.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch guild")
	}
	if guild == nil {
		return nil, NotFound("NOT_FOUND", "guild not found")
	}

	if guild.OwnerID == userID {
		return guild, nil
	}

	member, err := p.members.GetByGuildAndUser(ctx, guildID, userID)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch member")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "guild not found")
	}

	granted := permissions.Permission(guild.DefaultPermissions)
	if !granted.Has(permissions.PermAccess) || !granted.Has(perm) {
		return nil, Forbidden("MISSING_PERMISSION", "missing permission: "+permissions.Name(perm))
	}
	return guild, nil
}
