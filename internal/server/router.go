package server

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/parley-im/parley/internal/chat"
	"github.com/parley-im/parley/internal/codec"
	"github.com/parley-im/parley/internal/wire"
)

// Domain event kinds published after successful operations.
const (
	EventUserCreated         = "chat.user_created"
	EventConversationCreated = "chat.conversation_created"
	EventMessageCreated      = "chat.message_created"
	EventStatusPolled        = "chat.status_polled"
)

// serveCall decodes one request from the stream and writes its response.
// Parameters are read in the fixed order defined for each opcode; the
// response is always the paired opcode followed by the declared result type.
func (s *Server) serveCall(rw io.ReadWriter) error {
	op, err := codec.ReadInt32(rw)
	if err != nil {
		return fmt.Errorf("opcode: %w", err)
	}

	switch op {
	case wire.NewUserRequest:
		name, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		user := s.model.NewUser(name)
		if user != nil {
			s.publish(EventUserCreated, user.ID)
		}
		if err := codec.WriteInt32(rw, wire.NewUserResponse); err != nil {
			return err
		}
		return codec.WriteNullable(rw, user, wire.WriteUser)

	case wire.NewConversationRequest:
		title, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		owner, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		conv := s.model.NewConversation(title, owner)
		if conv != nil {
			s.publish(EventConversationCreated, conv.ID)
		}
		if err := codec.WriteInt32(rw, wire.NewConversationResponse); err != nil {
			return err
		}
		return codec.WriteNullable(rw, conv, wire.WriteConversationHeader)

	case wire.NewMessageRequest:
		author, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		conversation, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		body, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		msg := s.model.NewMessage(author, conversation, body)
		if msg != nil {
			s.publish(EventMessageCreated, msg.ID)
		}
		if err := codec.WriteInt32(rw, wire.NewMessageResponse); err != nil {
			return err
		}
		return codec.WriteNullable(rw, msg, wire.WriteMessage)

	case wire.AddUserInterestRequest:
		return s.nameAndRequester(rw, wire.AddUserInterestResponse, s.model.AddUserInterest)

	case wire.RemoveUserInterestRequest:
		return s.nameAndRequester(rw, wire.RemoveUserInterestResponse, s.model.RemoveUserInterest)

	case wire.AddConversationInterestRequest:
		return s.nameAndRequester(rw, wire.AddConversationInterestResponse, s.model.AddConversationInterest)

	case wire.RemoveConversationInterestRequest:
		return s.nameAndRequester(rw, wire.RemoveConversationInterestResponse, s.model.RemoveConversationInterest)

	case wire.AddUserToConversationRequest:
		name, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		title, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		requester, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		status := s.model.AddUserToConversation(name, title, requester)
		return writeStatus(rw, wire.AddUserToConversationResponse, status)

	case wire.ChangePermissionLevelRequest:
		name, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		title, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		level, err := codec.ReadInt32(rw)
		if err != nil {
			return err
		}
		requester, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		status := s.model.ChangePermissionLevel(name, title, chat.PermissionLevel(level), requester)
		return writeStatus(rw, wire.ChangePermissionLevelResponse, status)

	case wire.GetUsersRequest:
		users := s.model.Users()
		if err := codec.WriteInt32(rw, wire.GetUsersResponse); err != nil {
			return err
		}
		return codec.WriteSequence(rw, users, wire.WriteUser)

	case wire.GetConversationsRequest:
		convs := s.model.Conversations()
		if err := codec.WriteInt32(rw, wire.GetConversationsResponse); err != nil {
			return err
		}
		return codec.WriteSequence(rw, convs, wire.WriteConversationHeader)

	case wire.GetConversationPayloadsRequest:
		ids, err := codec.ReadSequence(rw, codec.ReadID)
		if err != nil {
			return err
		}
		payloads := s.model.ConversationPayloads(ids)
		if err := codec.WriteInt32(rw, wire.GetConversationPayloadsResponse); err != nil {
			return err
		}
		return codec.WriteSequence(rw, payloads, wire.WriteConversationPayload)

	case wire.GetMessagesRequest:
		ids, err := codec.ReadSequence(rw, codec.ReadID)
		if err != nil {
			return err
		}
		msgs := s.model.Messages(ids)
		if err := codec.WriteInt32(rw, wire.GetMessagesResponse); err != nil {
			return err
		}
		return codec.WriteSequence(rw, msgs, wire.WriteMessage)

	case wire.UserStatusUpdateRequest:
		name, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		requester, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		updates := s.model.UserStatusUpdate(name, requester)
		s.publish(EventStatusPolled, requester)
		if err := codec.WriteInt32(rw, wire.UserStatusUpdateResponse); err != nil {
			return err
		}
		return codec.WriteSequence(rw, updates, codec.WriteString)

	case wire.ConversationStatusUpdateRequest:
		title, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		requester, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		count := s.model.ConversationStatusUpdate(title, requester)
		s.publish(EventStatusPolled, requester)
		return writeStatus(rw, wire.ConversationStatusUpdateResponse, count)

	case wire.AttemptJoinConversationRequest:
		title, err := codec.ReadString(rw)
		if err != nil {
			return err
		}
		requester, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		status := s.model.AttemptJoinConversation(title, requester)
		return writeStatus(rw, wire.AttemptJoinConversationResponse, status)

	case wire.ListUsersRequest:
		conversation, err := codec.ReadID(rw)
		if err != nil {
			return err
		}
		entries := s.model.ListUsers(conversation)
		if err := codec.WriteInt32(rw, wire.ListUsersResponse); err != nil {
			return err
		}
		return codec.WriteSequence(rw, entries, codec.WriteString)

	case wire.ServerInfoRequest:
		if err := codec.WriteInt32(rw, wire.ServerInfoResponse); err != nil {
			return err
		}
		return wire.WriteServerInfo(rw, s.model.Info())

	default:
		return fmt.Errorf("unknown opcode %d", op)
	}
}

// nameAndRequester serves the four interest operations, which share a
// (text, requester id) → status-code shape.
func (s *Server) nameAndRequester(rw io.ReadWriter, response wire.Opcode, apply func(string, uuid.UUID) int32) error {
	name, err := codec.ReadString(rw)
	if err != nil {
		return err
	}
	requester, err := codec.ReadID(rw)
	if err != nil {
		return err
	}
	return writeStatus(rw, response, apply(name, requester))
}

// writeStatus writes a response opcode followed by an int32 result.
func writeStatus(w io.Writer, response wire.Opcode, status int32) error {
	if err := codec.WriteInt32(w, response); err != nil {
		return err
	}
	return codec.WriteInt32(w, status)
}
