package chat

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Users returns every user, insertion-ordered.
func (m *Model) Users() []User {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.users.All()
	out := make([]User, 0, len(all))
	for _, u := range all {
		out = append(out, *u)
	}
	return out
}

// Conversations returns every conversation header, insertion-ordered.
func (m *Model) Conversations() []ConversationHeader {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.conversations.All()
	out := make([]ConversationHeader, 0, len(all))
	for _, c := range all {
		out = append(out, *c)
	}
	return out
}

// ConversationPayloads resolves ids to payload records, deduplicating by
// identity and dropping (with a log entry) ids that map to nothing.
func (m *Model) ConversationPayloads(ids []uuid.UUID) []ConversationPayload {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]ConversationPayload, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			m.logger.Warn("duplicate conversation id", zap.Stringer("id", id))
			continue
		}
		seen[id] = true
		p, ok := m.payloads.Get(id)
		if !ok {
			m.logger.Warn("unmapped conversation id", zap.Stringer("id", id))
			continue
		}
		out = append(out, *p)
	}
	return out
}

// Messages resolves ids to message records, deduplicating by identity and
// dropping (with a log entry) ids that map to nothing.
func (m *Model) Messages(ids []uuid.UUID) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			m.logger.Warn("duplicate message id", zap.Stringer("id", id))
			continue
		}
		seen[id] = true
		msg, ok := m.messages.Get(id)
		if !ok {
			m.logger.Warn("unmapped message id", zap.Stringer("id", id))
			continue
		}
		out = append(out, *msg)
	}
	return out
}

// ListUsers flattens a conversation's permission map into "<id>=<level>"
// entries, sorted for a deterministic wire order. An unknown conversation
// yields an empty list.
func (m *Model) ListUsers(conversation uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	header, ok := m.conversations.Get(conversation)
	if !ok {
		m.logger.Warn("list users for unknown conversation", zap.Stringer("id", conversation))
		return []string{}
	}
	out := make([]string, 0, len(header.Permissions))
	for id, level := range header.Permissions {
		out = append(out, fmt.Sprintf("%s=%d", id, level))
	}
	sort.Strings(out)
	return out
}

// Info returns the process-lifetime server descriptor.
func (m *Model) Info() ServerInfo {
	return m.info
}

// UserStatusUpdate reports the conversations the named user has contributed
// to or created since the requester last polled them. The requester must
// already follow the target; a missing target and an unfollowed target both
// yield an empty result, and only a successful poll advances the poll
// timestamp.
func (m *Model) UserStatusUpdate(name string, requester uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.users.Get(requester)
	if !ok {
		m.logger.Warn("status update from unknown requester", zap.Stringer("requester", requester))
		return []string{}
	}
	target, ok := m.users.FirstByText(name)
	if !ok {
		// The requester is not told the user does not exist.
		return []string{}
	}
	if _, followed := req.FollowedUsers[target.ID]; !followed {
		return []string{}
	}

	last := m.polls.LastUserPoll(requester, target.ID)
	contributions := m.contributionsSince(last, target.ID)
	if len(contributions) == 0 {
		contributions = []string{NoRecentConversations}
	}
	m.polls.TouchUserPoll(requester, target.ID, m.now())
	return contributions
}

// contributionsSince walks every conversation chain. The first message by
// author newer than last adds that conversation's title and ends the scan of
// that conversation; conversations the author created after last contribute
// a "<title> (Creator)" entry unless their plain title was already added.
func (m *Model) contributionsSince(last time.Time, author uuid.UUID) []string {
	var out []string
	added := make(map[string]bool)

	for _, payload := range m.payloads.All() {
		header, ok := m.conversations.Get(payload.ID)
		if !ok {
			m.logger.Error("payload without header", zap.Stringer("id", payload.ID))
			continue
		}

		for id := payload.FirstMessage; id != uuid.Nil; {
			msg, ok := m.messages.Get(id)
			if !ok {
				m.logger.Error("broken message chain",
					zap.Stringer("conversation", payload.ID), zap.Stringer("message", id))
				break
			}
			if msg.Author == author && msg.Created.After(last) {
				out = append(out, header.Title)
				added[header.Title] = true
				break
			}
			id = msg.Next
		}

		if !added[header.Title] && header.Owner == author && header.Created.After(last) {
			out = append(out, header.Title+" (Creator)")
		}
	}
	return out
}

// ConversationStatusUpdate counts the messages added to the titled
// conversation since the requester last polled it. An unknown title is -2, a
// conversation the requester does not follow is -1; neither mutates poll
// state.
func (m *Model) ConversationStatusUpdate(title string, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	header, ok := m.conversations.FirstByText(title)
	if !ok {
		return StatusNotFound
	}
	req, ok := m.users.Get(requester)
	if !ok {
		m.logger.Warn("status update from unknown requester", zap.Stringer("requester", requester))
		return StatusNoOp
	}
	if _, followed := req.FollowedConversations[header.ID]; !followed {
		return StatusNoOp
	}

	last := m.polls.LastConvoPoll(requester, header.ID)
	var count int32
	payload, ok := m.payloads.Get(header.ID)
	if !ok {
		m.logger.Error("conversation without payload", zap.Stringer("id", header.ID))
		return StatusNoOp
	}
	for id := payload.FirstMessage; id != uuid.Nil; {
		msg, ok := m.messages.Get(id)
		if !ok {
			m.logger.Error("broken message chain",
				zap.Stringer("conversation", header.ID), zap.Stringer("message", id))
			break
		}
		if msg.Created.After(last) {
			count++
		}
		id = msg.Next
	}
	m.polls.TouchConvoPoll(requester, header.ID, m.now())
	return count
}

// AttemptJoinConversation reports whether the requester appears in the titled
// conversation's permission map. It is a pure membership check; the join
// mutation is AddUserToConversation.
func (m *Model) AttemptJoinConversation(title string, requester uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	header, ok := m.conversations.FirstByText(title)
	if !ok {
		return StatusNotFound
	}
	if _, member := header.Permissions[requester]; !member {
		m.logger.Info("join refused", zap.String("title", title), zap.Stringer("user", requester))
		return StatusNoOp
	}
	m.logger.Info("join allowed", zap.String("title", title), zap.Stringer("user", requester))
	return StatusOK
}
