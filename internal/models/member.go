package models

// MemberID is the composite key identifying a membership. The members
// collection has a unique index on it; that index is the only thing standing
// between two racing joins and a duplicate membership.
type MemberID struct {
	GuildID string `bson:"guild" json:"guild"`
	UserID  string `bson:"user" json:"user"`
}

// Member is the authoritative "user is in guild" record, independent of any
// field on the guild document.
type Member struct {
	ID       MemberID `bson:"_id" json:"id"`
	Nickname *string  `bson:"nickname,omitempty" json:"nickname,omitempty"`
}
