package models

import (
	"encoding/json"
	"fmt"
)

// ChannelKind discriminates the three channel variants. The kind fully
// determines which optional fields are populated.
type ChannelKind int

const (
	ChannelDirect ChannelKind = 0
	ChannelGroup  ChannelKind = 1
	ChannelGuild  ChannelKind = 2
)

// LastMessage is a denormalized preview of the newest message in a channel.
type LastMessage struct {
	ID           string `bson:"id" json:"id"`
	UserID       string `bson:"user_id" json:"user_id"`
	ShortContent string `bson:"short_content" json:"short_content"`
}

// Channel is a conversation surface. Direct channels carry Active and exactly
// two Recipients; group channels carry Recipients, OwnerID, Name and
// Description; guild channels carry GuildID, Name and Description.
type Channel struct {
	ID    string      `bson:"_id"`
	Nonce string      `bson:"nonce,omitempty"`
	Kind  ChannelKind `bson:"type"`

	Active      *bool        `bson:"active,omitempty"`
	LastMessage *LastMessage `bson:"last_message,omitempty"`
	Recipients  []string     `bson:"recipients,omitempty"`
	OwnerID     string       `bson:"owner,omitempty"`
	GuildID     string       `bson:"guild,omitempty"`
	Name        string       `bson:"name,omitempty"`
	Description string       `bson:"description,omitempty"`
}

// MarshalJSON emits only the fields valid for the channel's kind. An
// unrecognized kind is an error, never a silently empty payload.
func (c Channel) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ChannelDirect:
		return json.Marshal(struct {
			ID          string       `json:"id"`
			Kind        ChannelKind  `json:"type"`
			Active      *bool        `json:"active"`
			LastMessage *LastMessage `json:"last_message,omitempty"`
			Recipients  []string     `json:"recipients"`
		}{c.ID, c.Kind, c.Active, c.LastMessage, c.Recipients})
	case ChannelGroup:
		return json.Marshal(struct {
			ID          string       `json:"id"`
			Kind        ChannelKind  `json:"type"`
			LastMessage *LastMessage `json:"last_message,omitempty"`
			Recipients  []string     `json:"recipients"`
			Owner       string       `json:"owner"`
			Name        string       `json:"name"`
			Description string       `json:"description"`
		}{c.ID, c.Kind, c.LastMessage, c.Recipients, c.OwnerID, c.Name, c.Description})
	case ChannelGuild:
		return json.Marshal(struct {
			ID          string      `json:"id"`
			Kind        ChannelKind `json:"type"`
			Guild       string      `json:"guild"`
			Name        string      `json:"name"`
			Description string      `json:"description"`
		}{c.ID, c.Kind, c.GuildID, c.Name, c.Description})
	default:
		return nil, fmt.Errorf("channel %s: unknown kind %d", c.ID, c.Kind)
	}
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (c *Channel) Clone() *Channel {
	dup := *c
	if c.Active != nil {
		active := *c.Active
		dup.Active = &active
	}
	if c.LastMessage != nil {
		lm := *c.LastMessage
		dup.LastMessage = &lm
	}
	if c.Recipients != nil {
		dup.Recipients = append([]string(nil), c.Recipients...)
	}
	return &dup
}
