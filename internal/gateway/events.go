package gateway

import "encoding/json"

// Op codes for gateway payloads.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpIdentify     = 2
	OpHeartbeatAck = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady         = "READY"
	EventGuildCreate   = "GUILD_CREATE"
	EventGuildDelete   = "GUILD_DELETE"
	EventChannelCreate = "CHANNEL_CREATE"
	EventChannelDelete = "CHANNEL_DELETE"
	EventMemberJoin    = "MEMBER_JOIN"
	EventMemberLeave   = "MEMBER_LEAVE"
	EventBanAdd        = "BAN_ADD"
	EventBanRemove     = "BAN_REMOVE"
)

// Payload is the envelope for all gateway messages.
type Payload struct {
	Op    int             `json:"op"`
	Data  json.RawMessage `json:"d,omitempty"`
	Event string          `json:"t,omitempty"`
}

// IdentifyData is sent by the client in an Op 2 IDENTIFY.
type IdentifyData struct {
	Token string `json:"token"`
}

// ReadyData is the READY event sent after a successful identify.
type ReadyData struct {
	SessionID string   `json:"session_id"`
	UserID    string   `json:"user_id"`
	Guilds    []string `json:"guilds"`
}

// MemberEvent describes a membership change.
type MemberEvent struct {
	GuildID string `json:"guild"`
	UserID  string `json:"user"`
	Banned  bool   `json:"banned,omitempty"`
}

// ChannelEvent describes a channel creation or deletion within a guild.
type ChannelEvent struct {
	GuildID   string `json:"guild"`
	ChannelID string `json:"channel"`
	Name      string `json:"name,omitempty"`
}
