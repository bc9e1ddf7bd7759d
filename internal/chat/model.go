package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parley-im/parley/internal/store"
	"go.uber.org/zap"
)

// Version identifies the protocol generation this server speaks. It is
// derived from a fixed name so every build of the same generation reports the
// same identifier.
var Version = uuid.NewSHA1(uuid.NameSpaceOID, []byte("parley-protocol-1"))

// Model is the authoritative in-memory state of the server: the entity
// stores, the status-update poll tracker, and the process-lifetime server
// info. Every operation takes the single model lock for its full duration,
// so reads, mutations, and the engine's read-then-write poll sequences are
// all atomic with respect to each other.
type Model struct {
	mu sync.Mutex

	users         *store.Store[*User]
	conversations *store.Store[*ConversationHeader]
	payloads      *store.Store[*ConversationPayload]
	messages      *store.Store[*Message]

	polls *Tracker
	info  ServerInfo

	now    func() time.Time
	logger *zap.Logger
}

// NewModel creates an empty model. The server info start time is fixed at
// construction.
func NewModel(logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		users:         store.New[*User](),
		conversations: store.New[*ConversationHeader](),
		payloads:      store.New[*ConversationPayload](),
		messages:      store.New[*Message](),
		polls:         NewTracker(),
		now:           time.Now,
		logger:        logger,
	}
	m.info = ServerInfo{Version: Version, StartTime: m.now()}
	return m
}

// Counts returns the number of stored users, conversations, and messages.
func (m *Model) Counts() (users, conversations, messages int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users.Len(), m.conversations.Len(), m.messages.Len()
}
