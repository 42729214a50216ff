package models

// Invite grants access to one channel of one guild. Codes are unique across
// all guilds so a bare code resolves without extra context.
type Invite struct {
	Code      string `bson:"code" json:"code"`
	CreatorID string `bson:"creator" json:"creator"`
	ChannelID string `bson:"channel" json:"channel"`
}

// Ban records a banned user and the reason given at ban time.
type Ban struct {
	UserID string `bson:"id" json:"id"`
	Reason string `bson:"reason" json:"reason"`
}

// Guild is a server-like container of channels, members, invites and bans.
// Channels mirrors the ids of the guild-tagged documents in the channels
// collection; invites and bans are embedded in the guild document itself.
type Guild struct {
	ID                 string   `bson:"_id" json:"id"`
	Nonce              string   `bson:"nonce,omitempty" json:"-"`
	Name               string   `bson:"name" json:"name"`
	Description        string   `bson:"description" json:"description"`
	OwnerID            string   `bson:"owner" json:"owner"`
	Channels           []string `bson:"channels" json:"channels"`
	Invites            []Invite `bson:"invites" json:"-"`
	Bans               []Ban    `bson:"bans" json:"-"`
	DefaultPermissions int64    `bson:"default_permissions" json:"default_permissions"`
}

// Banned reports whether the guild's ban list contains the user.
func (g *Guild) Banned(userID string) bool {
	for _, b := range g.Bans {
		if b.UserID == userID {
			return true
		}
	}
	return false
}

// FindInvite returns the embedded invite with the given code, or nil.
func (g *Guild) FindInvite(code string) *Invite {
	for i := range g.Invites {
		if g.Invites[i].Code == code {
			return &g.Invites[i]
		}
	}
	return nil
}
