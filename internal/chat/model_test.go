package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out strictly increasing timestamps one millisecond apart.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func testModel(t *testing.T) (*Model, *fakeClock) {
	t.Helper()
	m := NewModel(nil)
	clock := newFakeClock()
	m.now = clock.now
	return m, clock
}

func TestNewUserAssignsIdentity(t *testing.T) {
	m, _ := testModel(t)

	u := m.NewUser("alice")
	require.NotNil(t, u)
	require.NotEqual(t, uuid.Nil, u.ID)
	require.Equal(t, "alice", u.Name)
	require.False(t, u.Created.IsZero())

	users := m.Users()
	require.Len(t, users, 1)
	require.Equal(t, u.ID, users[0].ID)
}

func TestNewConversationSeedsCreatorPermission(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	conv := m.NewConversation("general", alice.ID)
	require.NotNil(t, conv)
	require.Equal(t, alice.ID, conv.Owner)
	require.Equal(t, PermissionCreator, conv.Permissions[alice.ID])
	require.NotEmpty(t, conv.Permissions)

	require.Nil(t, m.NewConversation("orphan", uuid.New()))
}

func TestNewMessageRejectsUnknownReferences(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	conv := m.NewConversation("general", alice.ID)

	require.Nil(t, m.NewMessage(uuid.New(), conv.ID, "no author"))
	require.Nil(t, m.NewMessage(alice.ID, uuid.New(), "no conversation"))
	require.NotNil(t, m.NewMessage(alice.ID, conv.ID, "ok"))
}

func TestMessageChainInvariant(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	conv := m.NewConversation("general", alice.ID)

	var created []uuid.UUID
	for i := 0; i < 5; i++ {
		msg := m.NewMessage(alice.ID, conv.ID, fmt.Sprintf("msg %d", i))
		require.NotNil(t, msg)
		created = append(created, msg.ID)
	}

	payloads := m.ConversationPayloads([]uuid.UUID{conv.ID})
	require.Len(t, payloads, 1)
	payload := payloads[0]
	require.Equal(t, created[0], payload.FirstMessage)
	require.Equal(t, created[len(created)-1], payload.LastMessage)

	// Walking first→next visits every message exactly once, in creation
	// order, ending at LastMessage.
	var walked []uuid.UUID
	prev := time.Time{}
	for id := payload.FirstMessage; id != uuid.Nil; {
		msgs := m.Messages([]uuid.UUID{id})
		require.Len(t, msgs, 1)
		msg := msgs[0]
		require.True(t, msg.Created.After(prev))
		prev = msg.Created
		walked = append(walked, msg.ID)
		id = msg.Next
	}
	require.Equal(t, created, walked)
}

func TestUserInterestStatusCodes(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	m.NewUser("bob")

	require.Equal(t, StatusNotFound, m.AddUserInterest("carol", alice.ID))
	require.Equal(t, StatusOK, m.AddUserInterest("bob", alice.ID))
	require.Equal(t, StatusNoOp, m.AddUserInterest("bob", alice.ID))

	require.Equal(t, StatusNotFound, m.RemoveUserInterest("carol", alice.ID))
	require.Equal(t, StatusOK, m.RemoveUserInterest("bob", alice.ID))
	require.Equal(t, StatusNoOp, m.RemoveUserInterest("bob", alice.ID))

	// Unknown requester is a no-op, never a crash.
	require.Equal(t, StatusNoOp, m.AddUserInterest("bob", uuid.New()))
}

func TestConversationInterestStatusCodes(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	m.NewConversation("general", alice.ID)

	require.Equal(t, StatusNotFound, m.AddConversationInterest("missing", alice.ID))
	require.Equal(t, StatusOK, m.AddConversationInterest("general", alice.ID))
	require.Equal(t, StatusNoOp, m.AddConversationInterest("general", alice.ID))

	require.Equal(t, StatusOK, m.RemoveConversationInterest("general", alice.ID))
	require.Equal(t, StatusNoOp, m.RemoveConversationInterest("general", alice.ID))
}

func TestAddUserToConversation(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	m.NewUser("bob")
	m.NewConversation("general", alice.ID)

	require.Equal(t, StatusNotFound, m.AddUserToConversation("carol", "general", alice.ID))
	require.Equal(t, StatusNotFound, m.AddUserToConversation("bob", "missing", alice.ID))
	require.Equal(t, StatusOK, m.AddUserToConversation("bob", "general", alice.ID))
	require.Equal(t, StatusNoOp, m.AddUserToConversation("bob", "general", alice.ID))
	// The owner is already in the map from construction.
	require.Equal(t, StatusNoOp, m.AddUserToConversation("alice", "general", alice.ID))
}

func TestChangePermissionLevel(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	bob := m.NewUser("bob")
	m.NewUser("carol")
	m.NewConversation("general", alice.ID)
	require.Equal(t, StatusOK, m.AddUserToConversation("bob", "general", alice.ID))
	require.Equal(t, StatusOK, m.AddUserToConversation("carol", "general", alice.ID))

	// Creator promotes a member to owner.
	require.Equal(t, StatusOK, m.ChangePermissionLevel("bob", "general", PermissionOwner, alice.ID))
	// Same level again is a no-op.
	require.Equal(t, StatusNoOp, m.ChangePermissionLevel("bob", "general", PermissionOwner, alice.ID))
	// An owner can promote a member to owner? No: the requested level must be
	// strictly below the requester's own.
	require.Equal(t, StatusDenied, m.ChangePermissionLevel("carol", "general", PermissionOwner, bob.ID))
	// A member target below owner rank is fine for an owner.
	require.Equal(t, StatusNoOp, m.ChangePermissionLevel("carol", "general", PermissionMember, bob.ID))
	// Nobody outranks the creator.
	require.Equal(t, StatusDenied, m.ChangePermissionLevel("alice", "general", PermissionMember, bob.ID))
	// Target not in the permission map.
	m.NewUser("dave")
	require.Equal(t, StatusNotFound, m.ChangePermissionLevel("dave", "general", PermissionOwner, alice.ID))
	// Out-of-range level.
	require.Equal(t, StatusNoOp, m.ChangePermissionLevel("bob", "general", PermissionLevel(9), alice.ID))
	// Unknown conversation or user.
	require.Equal(t, StatusNotFound, m.ChangePermissionLevel("bob", "missing", PermissionMember, alice.ID))
}

func TestListUsersFlattensPermissions(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	conv := m.NewConversation("general", alice.ID)
	m.NewUser("bob")
	require.Equal(t, StatusOK, m.AddUserToConversation("bob", "general", alice.ID))

	entries := m.ListUsers(conv.ID)
	require.Len(t, entries, 2)
	require.Contains(t, entries, fmt.Sprintf("%s=%d", alice.ID, PermissionCreator))

	require.Empty(t, m.ListUsers(uuid.New()))
}

func TestGetMessagesDeduplicatesAndDropsUnknown(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	conv := m.NewConversation("general", alice.ID)
	msg := m.NewMessage(alice.ID, conv.ID, "hi")

	got := m.Messages([]uuid.UUID{msg.ID, msg.ID, uuid.New()})
	require.Len(t, got, 1)
	require.Equal(t, msg.ID, got[0].ID)
}

func TestConversationStatusUpdateScenario(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	bob := m.NewUser("bob")
	m.NewConversation("general", alice.ID)
	require.Equal(t, StatusOK, m.AddUserToConversation("bob", "general", alice.ID))
	require.Equal(t, StatusOK, m.AddConversationInterest("general", alice.ID))

	conv := m.Conversations()[0]
	require.NotNil(t, m.NewMessage(bob.ID, conv.ID, "hi"))

	require.Equal(t, int32(1), m.ConversationStatusUpdate("general", alice.ID))
	require.Equal(t, int32(0), m.ConversationStatusUpdate("general", alice.ID))
}

func TestConversationStatusUpdateCodes(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	m.NewConversation("general", alice.ID)

	// Unknown title: -2, and no poll state is mutated.
	require.Equal(t, StatusNotFound, m.ConversationStatusUpdate("missing", alice.ID))
	require.True(t, m.polls.LastConvoPoll(alice.ID, uuid.Nil).IsZero())

	// Known title, not followed: -1, no poll state mutated.
	conv := m.Conversations()[0]
	require.Equal(t, StatusNoOp, m.ConversationStatusUpdate("general", alice.ID))
	require.True(t, m.polls.LastConvoPoll(alice.ID, conv.ID).IsZero())
}

func TestUserStatusUpdateCreatorEntry(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	bob := m.NewUser("bob")
	require.Equal(t, StatusOK, m.AddUserInterest("alice", bob.ID))

	m.NewConversation("news", alice.ID)

	got := m.UserStatusUpdate("alice", bob.ID)
	require.Equal(t, []string{"news (Creator)"}, got)
}

func TestUserStatusUpdateContribution(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	bob := m.NewUser("bob")
	conv := m.NewConversation("general", bob.ID)
	require.Equal(t, StatusOK, m.AddUserInterest("alice", bob.ID))

	require.NotNil(t, m.NewMessage(alice.ID, conv.ID, "hello"))
	require.NotNil(t, m.NewMessage(alice.ID, conv.ID, "again"))

	// One entry per conversation, no matter how many messages.
	got := m.UserStatusUpdate("alice", bob.ID)
	require.Equal(t, []string{"general"}, got)
}

func TestUserStatusUpdateMonotonicity(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	bob := m.NewUser("bob")
	conv := m.NewConversation("general", bob.ID)
	require.Equal(t, StatusOK, m.AddUserInterest("alice", bob.ID))
	require.NotNil(t, m.NewMessage(alice.ID, conv.ID, "hello"))

	first := m.UserStatusUpdate("alice", bob.ID)
	require.Equal(t, []string{"general"}, first)

	// Nothing new since the last poll: sentinel entry, and the poll
	// timestamp still advances.
	before := m.polls.LastUserPoll(bob.ID, alice.ID)
	second := m.UserStatusUpdate("alice", bob.ID)
	require.Equal(t, []string{NoRecentConversations}, second)
	require.True(t, m.polls.LastUserPoll(bob.ID, alice.ID).After(before))
}

func TestUserStatusUpdateAsymmetry(t *testing.T) {
	m, _ := testModel(t)

	bob := m.NewUser("bob")

	// Missing target: empty result, requester is not told, no state change.
	require.Empty(t, m.UserStatusUpdate("ghost", bob.ID))

	// Existing but unfollowed target: also empty, and the follow-check
	// failure must not advance poll state.
	alice := m.NewUser("alice")
	require.Empty(t, m.UserStatusUpdate("alice", bob.ID))
	require.True(t, m.polls.LastUserPoll(bob.ID, alice.ID).IsZero())
}

func TestAttemptJoinConversation(t *testing.T) {
	m, _ := testModel(t)

	alice := m.NewUser("alice")
	bob := m.NewUser("bob")
	m.NewConversation("general", alice.ID)

	require.Equal(t, StatusNotFound, m.AttemptJoinConversation("missing", alice.ID))
	require.Equal(t, StatusOK, m.AttemptJoinConversation("general", alice.ID))
	require.Equal(t, StatusNoOp, m.AttemptJoinConversation("general", bob.ID))

	// The check never mutates the permission map.
	conv := m.Conversations()[0]
	require.Len(t, m.ListUsers(conv.ID), 1)
}

func TestDuplicateNamesShadowDeterministically(t *testing.T) {
	m, _ := testModel(t)

	first := m.NewUser("alice")
	m.NewUser("alice")
	bob := m.NewUser("bob")

	// Interest ops resolve to the first inserted "alice".
	require.Equal(t, StatusOK, m.AddUserInterest("alice", bob.ID))
	users := m.Users()
	require.Len(t, users, 3)
	require.Equal(t, first.ID, users[0].ID)
}
