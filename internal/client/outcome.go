package client

// outcome classifies how a remote call resolved. The exported stub methods
// keep the protocol's "degrade to empty" contract — a caller only ever sees
// the operation's zero value on failure — but internally every call resolves
// to one of these so the log line can say which kind of failure it was.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeNotFound
	outcomeTransportFailure
	outcomeMalformed
	outcomeBadOpcode
)

func (o outcome) String() string {
	switch o {
	case outcomeOK:
		return "ok"
	case outcomeNotFound:
		return "not found"
	case outcomeTransportFailure:
		return "transport failure"
	case outcomeMalformed:
		return "malformed response"
	case outcomeBadOpcode:
		return "unexpected response opcode"
	default:
		return "unknown"
	}
}
