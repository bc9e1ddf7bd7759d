package chat

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status codes shared by the mutation operations. They travel on the wire as
// plain int32 results.
const (
	StatusOK       int32 = 0  // change applied
	StatusNoOp     int32 = -1 // nothing to do (already in the requested state)
	StatusNotFound int32 = -2 // named user/conversation could not be resolved
	StatusDenied   int32 = 1  // requester lacks the privilege for the change
)

// NewUser creates a user. The id and creation time are assigned here.
func (m *Model) NewUser(name string) *User {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &User{
		ID:                    uuid.New(),
		Name:                  name,
		Created:               m.now(),
		FollowedUsers:         make(map[uuid.UUID]struct{}),
		FollowedConversations: make(map[uuid.UUID]struct{}),
	}
	m.users.Put(u.ID, name, u)
	m.logger.Info("user created", zap.String("name", name), zap.Stringer("id", u.ID))

	out := *u
	return &out
}

// NewConversation creates a conversation owned by owner, with the owner
// seeded into the permission map at creator level. Returns nil when the
// owner id is unknown.
func (m *Model) NewConversation(title string, owner uuid.UUID) *ConversationHeader {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users.Get(owner); !ok {
		m.logger.Warn("new conversation with unknown owner", zap.Stringer("owner", owner))
		return nil
	}

	header := NewConversationHeader(uuid.New(), owner, m.now(), title)
	m.conversations.Put(header.ID, title, header)
	m.payloads.Put(header.ID, "", &ConversationPayload{ID: header.ID})
	m.logger.Info("conversation created",
		zap.String("title", title), zap.Stringer("id", header.ID))

	out := *header
	return &out
}

// NewMessage appends a message to a conversation's chain; it becomes the new
// last message. Returns nil when the author or conversation is unknown.
func (m *Model) NewMessage(author, conversation uuid.UUID, body string) *Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users.Get(author); !ok {
		m.logger.Warn("new message from unknown author", zap.Stringer("author", author))
		return nil
	}
	payload, ok := m.payloads.Get(conversation)
	if !ok {
		m.logger.Warn("new message for unknown conversation", zap.Stringer("conversation", conversation))
		return nil
	}

	msg := &Message{
		ID:           uuid.New(),
		Author:       author,
		Conversation: conversation,
		Created:      m.now(),
		Body:         body,
	}

	if payload.LastMessage != uuid.Nil {
		prev, ok := m.messages.Get(payload.LastMessage)
		if !ok {
			m.logger.Error("conversation chain is missing its last message",
				zap.Stringer("conversation", conversation),
				zap.Stringer("last", payload.LastMessage))
			return nil
		}
		prev.Next = msg.ID
		msg.Previous = prev.ID
	} else {
		payload.FirstMessage = msg.ID
	}
	payload.LastMessage = msg.ID
	m.messages.Put(msg.ID, "", msg)

	out := *msg
	return &out
}

// AddUserInterest adds the named user to the requester's followed users.
func (m *Model) AddUserInterest(name string, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.users.Get(requester)
	if !ok {
		return StatusNoOp
	}
	target, ok := m.users.FirstByText(name)
	if !ok {
		return StatusNotFound
	}
	if _, followed := req.FollowedUsers[target.ID]; followed {
		return StatusNoOp
	}
	req.FollowedUsers[target.ID] = struct{}{}
	return StatusOK
}

// RemoveUserInterest removes the named user from the requester's followed
// users.
func (m *Model) RemoveUserInterest(name string, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.users.Get(requester)
	if !ok {
		return StatusNoOp
	}
	target, ok := m.users.FirstByText(name)
	if !ok {
		return StatusNotFound
	}
	if _, followed := req.FollowedUsers[target.ID]; !followed {
		return StatusNoOp
	}
	delete(req.FollowedUsers, target.ID)
	return StatusOK
}

// AddConversationInterest adds the titled conversation to the requester's
// followed conversations.
func (m *Model) AddConversationInterest(title string, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.users.Get(requester)
	if !ok {
		return StatusNoOp
	}
	target, ok := m.conversations.FirstByText(title)
	if !ok {
		return StatusNotFound
	}
	if _, followed := req.FollowedConversations[target.ID]; followed {
		return StatusNoOp
	}
	req.FollowedConversations[target.ID] = struct{}{}
	return StatusOK
}

// RemoveConversationInterest removes the titled conversation from the
// requester's followed conversations.
func (m *Model) RemoveConversationInterest(title string, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.users.Get(requester)
	if !ok {
		return StatusNoOp
	}
	target, ok := m.conversations.FirstByText(title)
	if !ok {
		return StatusNotFound
	}
	if _, followed := req.FollowedConversations[target.ID]; !followed {
		return StatusNoOp
	}
	delete(req.FollowedConversations, target.ID)
	return StatusOK
}

// AddUserToConversation inserts the named user into the titled conversation's
// permission map at member level. This is the join mutation;
// AttemptJoinConversation only checks membership.
func (m *Model) AddUserToConversation(name, title string, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users.Get(requester); !ok {
		return StatusNoOp
	}
	user, ok := m.users.FirstByText(name)
	if !ok {
		return StatusNotFound
	}
	header, ok := m.conversations.FirstByText(title)
	if !ok {
		return StatusNotFound
	}
	if _, member := header.Permissions[user.ID]; member {
		return StatusNoOp
	}
	header.Permissions[user.ID] = PermissionMember
	m.logger.Info("user added to conversation",
		zap.String("name", name), zap.String("title", title))
	return StatusOK
}

// ChangePermissionLevel sets the named user's level within the titled
// conversation. The requester must be a member whose level strictly exceeds
// both the target's current level and the requested level; the creator
// therefore outranks everyone and can never be demoted.
func (m *Model) ChangePermissionLevel(name, title string, level PermissionLevel, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !level.Valid() {
		return StatusNoOp
	}
	if _, ok := m.users.Get(requester); !ok {
		return StatusNoOp
	}
	user, ok := m.users.FirstByText(name)
	if !ok {
		return StatusNotFound
	}
	header, ok := m.conversations.FirstByText(title)
	if !ok {
		return StatusNotFound
	}
	current, member := header.Permissions[user.ID]
	if !member {
		return StatusNotFound
	}
	if current == level {
		return StatusNoOp
	}
	requesterLevel, ok := header.Permissions[requester]
	if !ok || requesterLevel <= current || requesterLevel <= level {
		m.logger.Info("permission change denied",
			zap.String("name", name), zap.String("title", title),
			zap.Stringer("requester", requester))
		return StatusDenied
	}
	header.Permissions[user.ID] = level
	return StatusOK
}
