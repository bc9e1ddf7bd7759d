// Package wire defines the parley protocol surface: the opcode space and the
// wire encoding of the domain entities. Every remote operation owns an even
// request opcode; its response opcode is always request+1. That pairing is
// the single framing rule of the protocol — both the router and the client
// stub rely on it.
package wire

// Opcode tags one protocol request or response kind. It travels as a 4-byte
// big-endian signed integer at the start of every message.
type Opcode = int32

const (
	NewUserRequest                     Opcode = 100
	NewUserResponse                    Opcode = 101
	NewConversationRequest             Opcode = 102
	NewConversationResponse            Opcode = 103
	NewMessageRequest                  Opcode = 104
	NewMessageResponse                 Opcode = 105
	AddUserInterestRequest             Opcode = 106
	AddUserInterestResponse            Opcode = 107
	RemoveUserInterestRequest          Opcode = 108
	RemoveUserInterestResponse         Opcode = 109
	AddConversationInterestRequest     Opcode = 110
	AddConversationInterestResponse    Opcode = 111
	RemoveConversationInterestRequest  Opcode = 112
	RemoveConversationInterestResponse Opcode = 113
	AddUserToConversationRequest       Opcode = 114
	AddUserToConversationResponse      Opcode = 115
	ChangePermissionLevelRequest       Opcode = 116
	ChangePermissionLevelResponse      Opcode = 117
	GetUsersRequest                    Opcode = 118
	GetUsersResponse                   Opcode = 119
	GetConversationsRequest            Opcode = 120
	GetConversationsResponse           Opcode = 121
	GetConversationPayloadsRequest     Opcode = 122
	GetConversationPayloadsResponse    Opcode = 123
	GetMessagesRequest                 Opcode = 124
	GetMessagesResponse                Opcode = 125
	UserStatusUpdateRequest            Opcode = 126
	UserStatusUpdateResponse           Opcode = 127
	ConversationStatusUpdateRequest    Opcode = 128
	ConversationStatusUpdateResponse   Opcode = 129
	AttemptJoinConversationRequest     Opcode = 130
	AttemptJoinConversationResponse    Opcode = 131
	ListUsersRequest                   Opcode = 132
	ListUsersResponse                  Opcode = 133
	ServerInfoRequest                  Opcode = 134
	ServerInfoResponse                 Opcode = 135
)

// ResponseFor returns the response opcode paired with a request opcode.
func ResponseFor(request Opcode) Opcode {
	return request + 1
}
