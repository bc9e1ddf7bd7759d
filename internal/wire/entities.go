package wire

import (
	"io"

	"github.com/google/uuid"
	"github.com/parley-im/parley/internal/chat"
	"github.com/parley-im/parley/internal/codec"
)

// Entity encoding. Only wire-visible fields travel: a user's followed sets
// and a conversation's permission map are server-side state exposed through
// dedicated operations, not through the entity records.

// WriteUser encodes id, name, creation time.
func WriteUser(w io.Writer, u chat.User) error {
	if err := codec.WriteID(w, u.ID); err != nil {
		return err
	}
	if err := codec.WriteString(w, u.Name); err != nil {
		return err
	}
	return codec.WriteTime(w, u.Created)
}

// ReadUser decodes a user record.
func ReadUser(r io.Reader) (chat.User, error) {
	var u chat.User
	var err error
	if u.ID, err = codec.ReadID(r); err != nil {
		return chat.User{}, err
	}
	if u.Name, err = codec.ReadString(r); err != nil {
		return chat.User{}, err
	}
	if u.Created, err = codec.ReadTime(r); err != nil {
		return chat.User{}, err
	}
	return u, nil
}

// WriteConversationHeader encodes id, owner, creation time, title.
func WriteConversationHeader(w io.Writer, c chat.ConversationHeader) error {
	if err := codec.WriteID(w, c.ID); err != nil {
		return err
	}
	if err := codec.WriteID(w, c.Owner); err != nil {
		return err
	}
	if err := codec.WriteTime(w, c.Created); err != nil {
		return err
	}
	return codec.WriteString(w, c.Title)
}

// ReadConversationHeader decodes a conversation header.
func ReadConversationHeader(r io.Reader) (chat.ConversationHeader, error) {
	var c chat.ConversationHeader
	var err error
	if c.ID, err = codec.ReadID(r); err != nil {
		return chat.ConversationHeader{}, err
	}
	if c.Owner, err = codec.ReadID(r); err != nil {
		return chat.ConversationHeader{}, err
	}
	if c.Created, err = codec.ReadTime(r); err != nil {
		return chat.ConversationHeader{}, err
	}
	if c.Title, err = codec.ReadString(r); err != nil {
		return chat.ConversationHeader{}, err
	}
	return c, nil
}

// WriteConversationPayload encodes id plus nullable first/last message ids.
func WriteConversationPayload(w io.Writer, p chat.ConversationPayload) error {
	if err := codec.WriteID(w, p.ID); err != nil {
		return err
	}
	if err := writeOptionalID(w, p.FirstMessage); err != nil {
		return err
	}
	return writeOptionalID(w, p.LastMessage)
}

// ReadConversationPayload decodes a conversation payload.
func ReadConversationPayload(r io.Reader) (chat.ConversationPayload, error) {
	var p chat.ConversationPayload
	var err error
	if p.ID, err = codec.ReadID(r); err != nil {
		return chat.ConversationPayload{}, err
	}
	if p.FirstMessage, err = readOptionalID(r); err != nil {
		return chat.ConversationPayload{}, err
	}
	if p.LastMessage, err = readOptionalID(r); err != nil {
		return chat.ConversationPayload{}, err
	}
	return p, nil
}

// WriteMessage encodes id, author, conversation, creation time, body and the
// nullable previous/next chain links.
func WriteMessage(w io.Writer, m chat.Message) error {
	if err := codec.WriteID(w, m.ID); err != nil {
		return err
	}
	if err := codec.WriteID(w, m.Author); err != nil {
		return err
	}
	if err := codec.WriteID(w, m.Conversation); err != nil {
		return err
	}
	if err := codec.WriteTime(w, m.Created); err != nil {
		return err
	}
	if err := codec.WriteString(w, m.Body); err != nil {
		return err
	}
	if err := writeOptionalID(w, m.Previous); err != nil {
		return err
	}
	return writeOptionalID(w, m.Next)
}

// ReadMessage decodes a message record.
func ReadMessage(r io.Reader) (chat.Message, error) {
	var m chat.Message
	var err error
	if m.ID, err = codec.ReadID(r); err != nil {
		return chat.Message{}, err
	}
	if m.Author, err = codec.ReadID(r); err != nil {
		return chat.Message{}, err
	}
	if m.Conversation, err = codec.ReadID(r); err != nil {
		return chat.Message{}, err
	}
	if m.Created, err = codec.ReadTime(r); err != nil {
		return chat.Message{}, err
	}
	if m.Body, err = codec.ReadString(r); err != nil {
		return chat.Message{}, err
	}
	if m.Previous, err = readOptionalID(r); err != nil {
		return chat.Message{}, err
	}
	if m.Next, err = readOptionalID(r); err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

// WriteServerInfo encodes the fixed version identifier + start time pair.
func WriteServerInfo(w io.Writer, info chat.ServerInfo) error {
	if err := codec.WriteID(w, info.Version); err != nil {
		return err
	}
	return codec.WriteTime(w, info.StartTime)
}

// ReadServerInfo decodes a server info pair.
func ReadServerInfo(r io.Reader) (chat.ServerInfo, error) {
	var info chat.ServerInfo
	var err error
	if info.Version, err = codec.ReadID(r); err != nil {
		return chat.ServerInfo{}, err
	}
	if info.StartTime, err = codec.ReadTime(r); err != nil {
		return chat.ServerInfo{}, err
	}
	return info, nil
}

// writeOptionalID maps uuid.Nil to an absent nullable<Identifier>.
func writeOptionalID(w io.Writer, id uuid.UUID) error {
	if id == uuid.Nil {
		return codec.WriteNullable[uuid.UUID](w, nil, codec.WriteID)
	}
	return codec.WriteNullable(w, &id, codec.WriteID)
}

// readOptionalID maps an absent nullable<Identifier> to uuid.Nil.
func readOptionalID(r io.Reader) (uuid.UUID, error) {
	id, err := codec.ReadNullable(r, codec.ReadID)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, nil
	}
	return *id, nil
}
