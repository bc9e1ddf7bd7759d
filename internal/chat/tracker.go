package chat

import (
	"time"

	"github.com/google/uuid"
)

// pollKey identifies one (requester, target) polling relationship.
type pollKey struct {
	requester uuid.UUID
	target    uuid.UUID
}

// Tracker owns the status-update engine's state: the last poll time for each
// (requester, followed user) and (requester, followed conversation) pair.
// The zero time means "never polled". A Tracker has no lock of its own; the
// model lock covers it.
type Tracker struct {
	userPolls  map[pollKey]time.Time
	convoPolls map[pollKey]time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		userPolls:  make(map[pollKey]time.Time),
		convoPolls: make(map[pollKey]time.Time),
	}
}

// LastUserPoll returns when requester last polled the followed user.
func (t *Tracker) LastUserPoll(requester, target uuid.UUID) time.Time {
	return t.userPolls[pollKey{requester, target}]
}

// TouchUserPoll advances the user poll timestamp. A poll timestamp never
// decreases.
func (t *Tracker) TouchUserPoll(requester, target uuid.UUID, now time.Time) {
	k := pollKey{requester, target}
	if now.After(t.userPolls[k]) {
		t.userPolls[k] = now
	}
}

// LastConvoPoll returns when requester last polled the followed conversation.
func (t *Tracker) LastConvoPoll(requester, target uuid.UUID) time.Time {
	return t.convoPolls[pollKey{requester, target}]
}

// TouchConvoPoll advances the conversation poll timestamp, never backwards.
func (t *Tracker) TouchConvoPoll(requester, target uuid.UUID, now time.Time) {
	k := pollKey{requester, target}
	if now.After(t.convoPolls[k]) {
		t.convoPolls[k] = now
	}
}
