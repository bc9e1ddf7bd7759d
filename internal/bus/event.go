package bus

import "time"

// Event is one occurrence published on the bus. Kind is a dotted name such
// as "chat.message_created" or "daemon.status_changed".
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
