// Package client is the stub side of the parley protocol: one method per
// remote operation, each acquiring a connection for exactly one
// request/response exchange. All methods are blocking. Failures degrade to
// the operation's zero value and are logged, never raised — callers cannot
// distinguish "empty because not found" from "empty because the call
// failed", which is the protocol's documented contract.
package client

import (
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/parley-im/parley/internal/chat"
	"github.com/parley-im/parley/internal/codec"
	"github.com/parley-im/parley/internal/transport"
	"github.com/parley-im/parley/internal/wire"
	"go.uber.org/zap"
)

// Client issues remote operations against a parley server.
type Client struct {
	source transport.Source
	logger *zap.Logger
}

// New creates a client over the given connection source.
func New(source transport.Source, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{source: source, logger: logger}
}

// call runs one request/response exchange. The connection is released on
// every exit path. writeParams and readResult may be nil for operations
// without parameters or with no body beyond the opcode.
func (c *Client) call(request wire.Opcode, writeParams func(io.Writer) error, readResult func(io.Reader) error) outcome {
	conn, err := c.source.Connect()
	if err != nil {
		return outcomeTransportFailure
	}
	defer conn.Close()

	if err := codec.WriteInt32(conn.Out(), request); err != nil {
		return outcomeTransportFailure
	}
	if writeParams != nil {
		if err := writeParams(conn.Out()); err != nil {
			return outcomeTransportFailure
		}
	}

	got, err := codec.ReadInt32(conn.In())
	if err != nil {
		return outcomeTransportFailure
	}
	if got != wire.ResponseFor(request) {
		return outcomeBadOpcode
	}
	if readResult != nil {
		if err := readResult(conn.In()); err != nil {
			if errors.Is(err, codec.ErrMalformed) {
				return outcomeMalformed
			}
			return outcomeTransportFailure
		}
	}
	return outcomeOK
}

func (c *Client) logFailure(op string, o outcome) {
	c.logger.Error("call failed", zap.String("op", op), zap.Stringer("outcome", o))
}

// NewUser creates a user on the server; the server assigns id and creation
// time. Returns nil when the call fails.
func (c *Client) NewUser(name string) *chat.User {
	var user *chat.User
	o := c.call(wire.NewUserRequest,
		func(w io.Writer) error { return codec.WriteString(w, name) },
		func(r io.Reader) error {
			var err error
			user, err = codec.ReadNullable(r, wire.ReadUser)
			return err
		})
	if o != outcomeOK {
		c.logFailure("newUser", o)
		return nil
	}
	return user
}

// NewConversation creates a conversation owned by owner. Returns nil when
// the call fails or the server declines.
func (c *Client) NewConversation(title string, owner uuid.UUID) *chat.ConversationHeader {
	var conv *chat.ConversationHeader
	o := c.call(wire.NewConversationRequest,
		func(w io.Writer) error {
			if err := codec.WriteString(w, title); err != nil {
				return err
			}
			return codec.WriteID(w, owner)
		},
		func(r io.Reader) error {
			var err error
			conv, err = codec.ReadNullable(r, wire.ReadConversationHeader)
			return err
		})
	if o != outcomeOK {
		c.logFailure("newConversation", o)
		return nil
	}
	if conv == nil {
		c.logger.Info("server declined", zap.String("op", "newConversation"),
			zap.Stringer("outcome", outcomeNotFound))
	}
	return conv
}

// NewMessage appends a message to a conversation. Returns nil when the call
// fails or the server declines.
func (c *Client) NewMessage(author, conversation uuid.UUID, body string) *chat.Message {
	var msg *chat.Message
	o := c.call(wire.NewMessageRequest,
		func(w io.Writer) error {
			if err := codec.WriteID(w, author); err != nil {
				return err
			}
			if err := codec.WriteID(w, conversation); err != nil {
				return err
			}
			return codec.WriteString(w, body)
		},
		func(r io.Reader) error {
			var err error
			msg, err = codec.ReadNullable(r, wire.ReadMessage)
			return err
		})
	if o != outcomeOK {
		c.logFailure("newMessage", o)
		return nil
	}
	if msg == nil {
		c.logger.Info("server declined", zap.String("op", "newMessage"),
			zap.Stringer("outcome", outcomeNotFound))
	}
	return msg
}

// statusCall runs a (text, requester) → status-code operation.
func (c *Client) statusCall(op string, request wire.Opcode, text string, requester uuid.UUID) int32 {
	var status int32
	o := c.call(request,
		func(w io.Writer) error {
			if err := codec.WriteString(w, text); err != nil {
				return err
			}
			return codec.WriteID(w, requester)
		},
		func(r io.Reader) error {
			var err error
			status, err = codec.ReadInt32(r)
			return err
		})
	if o != outcomeOK {
		c.logFailure(op, o)
		return 0
	}
	return status
}

// AddUserInterest adds the named user to the requester's followed users.
func (c *Client) AddUserInterest(name string, requester uuid.UUID) int32 {
	return c.statusCall("addUserInterest", wire.AddUserInterestRequest, name, requester)
}

// RemoveUserInterest removes the named user from the requester's followed
// users.
func (c *Client) RemoveUserInterest(name string, requester uuid.UUID) int32 {
	return c.statusCall("removeUserInterest", wire.RemoveUserInterestRequest, name, requester)
}

// AddConversationInterest adds the titled conversation to the requester's
// followed conversations.
func (c *Client) AddConversationInterest(title string, requester uuid.UUID) int32 {
	return c.statusCall("addConversationInterest", wire.AddConversationInterestRequest, title, requester)
}

// RemoveConversationInterest removes the titled conversation from the
// requester's followed conversations.
func (c *Client) RemoveConversationInterest(title string, requester uuid.UUID) int32 {
	return c.statusCall("removeConversationInterest", wire.RemoveConversationInterestRequest, title, requester)
}

// AddUserToConversation adds the named user to the titled conversation's
// permission map at member level.
func (c *Client) AddUserToConversation(name, title string, requester uuid.UUID) int32 {
	var status int32
	o := c.call(wire.AddUserToConversationRequest,
		func(w io.Writer) error {
			if err := codec.WriteString(w, name); err != nil {
				return err
			}
			if err := codec.WriteString(w, title); err != nil {
				return err
			}
			return codec.WriteID(w, requester)
		},
		func(r io.Reader) error {
			var err error
			status, err = codec.ReadInt32(r)
			return err
		})
	if o != outcomeOK {
		c.logFailure("addUserToConversation", o)
		return 0
	}
	return status
}

// ChangePermissionLevel sets the named user's permission level within the
// titled conversation.
func (c *Client) ChangePermissionLevel(name, title string, level chat.PermissionLevel, requester uuid.UUID) int32 {
	var status int32
	o := c.call(wire.ChangePermissionLevelRequest,
		func(w io.Writer) error {
			if err := codec.WriteString(w, name); err != nil {
				return err
			}
			if err := codec.WriteString(w, title); err != nil {
				return err
			}
			if err := codec.WriteInt32(w, int32(level)); err != nil {
				return err
			}
			return codec.WriteID(w, requester)
		},
		func(r io.Reader) error {
			var err error
			status, err = codec.ReadInt32(r)
			return err
		})
	if o != outcomeOK {
		c.logFailure("changePermissionLevel", o)
		return 0
	}
	return status
}

// Users returns a full snapshot of users in insertion order.
func (c *Client) Users() []chat.User {
	var users []chat.User
	o := c.call(wire.GetUsersRequest, nil,
		func(r io.Reader) error {
			var err error
			users, err = codec.ReadSequence(r, wire.ReadUser)
			return err
		})
	if o != outcomeOK {
		c.logFailure("getUsers", o)
		return nil
	}
	return users
}

// Conversations returns a full snapshot of conversation headers in insertion
// order.
func (c *Client) Conversations() []chat.ConversationHeader {
	var convs []chat.ConversationHeader
	o := c.call(wire.GetConversationsRequest, nil,
		func(r io.Reader) error {
			var err error
			convs, err = codec.ReadSequence(r, wire.ReadConversationHeader)
			return err
		})
	if o != outcomeOK {
		c.logFailure("getConversations", o)
		return nil
	}
	return convs
}

// ConversationPayloads resolves conversation ids to payload records; unknown
// ids are silently dropped by the server.
func (c *Client) ConversationPayloads(ids []uuid.UUID) []chat.ConversationPayload {
	var payloads []chat.ConversationPayload
	o := c.call(wire.GetConversationPayloadsRequest,
		func(w io.Writer) error { return codec.WriteSequence(w, ids, codec.WriteID) },
		func(r io.Reader) error {
			var err error
			payloads, err = codec.ReadSequence(r, wire.ReadConversationPayload)
			return err
		})
	if o != outcomeOK {
		c.logFailure("getConversationPayloads", o)
		return nil
	}
	return payloads
}

// Messages resolves message ids to message records; unknown ids are silently
// dropped by the server.
func (c *Client) Messages(ids []uuid.UUID) []chat.Message {
	var msgs []chat.Message
	o := c.call(wire.GetMessagesRequest,
		func(w io.Writer) error { return codec.WriteSequence(w, ids, codec.WriteID) },
		func(r io.Reader) error {
			var err error
			msgs, err = codec.ReadSequence(r, wire.ReadMessage)
			return err
		})
	if o != outcomeOK {
		c.logFailure("getMessages", o)
		return nil
	}
	return msgs
}

// UserStatusUpdate asks what the named followed user has done since the
// requester last asked.
func (c *Client) UserStatusUpdate(name string, requester uuid.UUID) []string {
	var updates []string
	o := c.call(wire.UserStatusUpdateRequest,
		func(w io.Writer) error {
			if err := codec.WriteString(w, name); err != nil {
				return err
			}
			return codec.WriteID(w, requester)
		},
		func(r io.Reader) error {
			var err error
			updates, err = codec.ReadSequence(r, codec.ReadString)
			return err
		})
	if o != outcomeOK {
		c.logFailure("userStatusUpdate", o)
		return nil
	}
	return updates
}

// ConversationStatusUpdate counts new messages in the titled followed
// conversation since the requester last asked.
func (c *Client) ConversationStatusUpdate(title string, requester uuid.UUID) int32 {
	return c.statusCall("conversationStatusUpdate", wire.ConversationStatusUpdateRequest, title, requester)
}

// AttemptJoinConversation checks whether the requester is in the titled
// conversation's permission map.
func (c *Client) AttemptJoinConversation(title string, requester uuid.UUID) int32 {
	return c.statusCall("attemptJoinConversation", wire.AttemptJoinConversationRequest, title, requester)
}

// ListUsers returns the "<id>=<level>" permission entries of a conversation.
func (c *Client) ListUsers(conversation uuid.UUID) []string {
	var entries []string
	o := c.call(wire.ListUsersRequest,
		func(w io.Writer) error { return codec.WriteID(w, conversation) },
		func(r io.Reader) error {
			var err error
			entries, err = codec.ReadSequence(r, codec.ReadString)
			return err
		})
	if o != outcomeOK {
		c.logFailure("listUsers", o)
		return nil
	}
	return entries
}

// Info returns the server's protocol version and start time. Returns nil
// when the call fails.
func (c *Client) Info() *chat.ServerInfo {
	var info chat.ServerInfo
	o := c.call(wire.ServerInfoRequest, nil,
		func(r io.Reader) error {
			var err error
			info, err = wire.ReadServerInfo(r)
			return err
		})
	if o != outcomeOK {
		c.logFailure("getInfo", o)
		return nil
	}
	return &info
}
