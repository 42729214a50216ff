package permissions

import "strings"

// Permission is a bitfield representing a set of capabilities within a guild.
type Permission int64

const (
	PermAccess         Permission = 1 << 0
	PermCreateInvite   Permission = 1 << 1
	PermKickMembers    Permission = 1 << 2
	PermBanMembers     Permission = 1 << 3
	PermReadMessages   Permission = 1 << 4
	PermSendMessages   Permission = 1 << 5
	PermManageMessages Permission = 1 << 6
	PermManageChannels Permission = 1 << 7
	PermManageServer   Permission = 1 << 8
)

// DefaultPermissions is the permission set granted to ordinary members of a
// freshly created guild: access, invite creation, read and send.
const DefaultPermissions = PermAccess | PermCreateInvite | PermReadMessages | PermSendMessages

// Has returns true if p contains all bits in perm.
func (p Permission) Has(perm Permission) bool { return p&perm == perm }

// Add returns p with the bits from perm set.
func (p Permission) Add(perm Permission) Permission { return p | perm }

// Remove returns p with the bits from perm cleared.
func (p Permission) Remove(perm Permission) Permission { return p &^ perm }

var permNames = []struct {
	bit  Permission
	name string
}{
	{PermAccess, "ACCESS"},
	{PermCreateInvite, "CREATE_INVITE"},
	{PermKickMembers, "KICK_MEMBERS"},
	{PermBanMembers, "BAN_MEMBERS"},
	{PermReadMessages, "READ_MESSAGES"},
	{PermSendMessages, "SEND_MESSAGES"},
	{PermManageMessages, "MANAGE_MESSAGES"},
	{PermManageChannels, "MANAGE_CHANNELS"},
	{PermManageServer, "MANAGE_SERVER"},
}

// String lists the set permission names separated by " | ".
func (p Permission) String() string {
	if p == 0 {
		return "NONE"
	}
	var names []string
	for _, pn := range permNames {
		if p.Has(pn.bit) {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, " | ")
}

// Name returns the canonical name of a single permission bit.
func Name(perm Permission) string {
	for _, pn := range permNames {
		if pn.bit == perm {
			return pn.name
		}
	}
	return "UNKNOWN"
}
