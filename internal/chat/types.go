// Package chat holds the server-side domain model: users, conversations,
// messages, the in-memory state they live in, and the status-update engine
// that answers "what changed since I last asked".
package chat

import (
	"time"

	"github.com/google/uuid"
)

// PermissionLevel is the ordinal privilege a user holds within one
// conversation. Higher values outrank lower ones.
type PermissionLevel int32

const (
	PermissionMember  PermissionLevel = 1
	PermissionOwner   PermissionLevel = 2
	PermissionCreator PermissionLevel = 3
)

// Valid reports whether l is one of the defined levels.
func (l PermissionLevel) Valid() bool {
	return l >= PermissionMember && l <= PermissionCreator
}

func (l PermissionLevel) String() string {
	switch l {
	case PermissionMember:
		return "member"
	case PermissionOwner:
		return "owner"
	case PermissionCreator:
		return "creator"
	default:
		return "unknown"
	}
}

// User is a registered account. The followed sets are server-side state
// mutated only by the interest operations; they never travel on the wire.
type User struct {
	ID      uuid.UUID
	Name    string
	Created time.Time

	FollowedUsers         map[uuid.UUID]struct{}
	FollowedConversations map[uuid.UUID]struct{}
}

// ConversationHeader is the summary half of a conversation. Permissions
// always contains the owner at PermissionCreator from construction onward.
type ConversationHeader struct {
	ID          uuid.UUID
	Owner       uuid.UUID
	Created     time.Time
	Title       string
	Permissions map[uuid.UUID]PermissionLevel
}

// NewConversationHeader builds a header with the owner seeded as creator.
func NewConversationHeader(id, owner uuid.UUID, created time.Time, title string) *ConversationHeader {
	return &ConversationHeader{
		ID:      id,
		Owner:   owner,
		Created: created,
		Title:   title,
		Permissions: map[uuid.UUID]PermissionLevel{
			owner: PermissionCreator,
		},
	}
}

// ConversationPayload is the chain half of a conversation. FirstMessage and
// LastMessage are either both uuid.Nil (empty conversation) or both set.
type ConversationPayload struct {
	ID           uuid.UUID
	FirstMessage uuid.UUID
	LastMessage  uuid.UUID
}

// Message is one entry in a conversation's chain. Previous and Next are
// uuid.Nil exactly at the chain's ends.
type Message struct {
	ID           uuid.UUID
	Author       uuid.UUID
	Conversation uuid.UUID
	Created      time.Time
	Body         string
	Previous     uuid.UUID
	Next         uuid.UUID
}

// ServerInfo is the static process-lifetime descriptor returned by getInfo.
type ServerInfo struct {
	Version   uuid.UUID
	StartTime time.Time
}

// NoRecentConversations is the sentinel entry a user status update returns
// when the followed user has no recent activity.
const NoRecentConversations = "(No recent conversations)"
