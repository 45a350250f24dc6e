package model

import "time"

// Conversation types.  AI-typed conversations get automatic replies from the
// orchestrator; couple_direct is plain person-to-person messaging.
const (
	ConvPrivateAI    = "private_ai"
	ConvCoupleAI     = "couple_ai"
	ConvCoupleDirect = "couple_direct"
)

// Participant roles.  Every conversation has exactly one owner (its
// creator); couple conversations additionally carry the partner as member.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// IsAIType reports whether a conversation type involves the assistant.
func IsAIType(conversationType string) bool {
	return conversationType == ConvPrivateAI || conversationType == ConvCoupleAI
}

// Conversation is a thread of messages.  The Metadata column holds a JSON
// blob (currently only quiz state); it is decoded into typed structures at
// the store boundary and never passed around as raw text.
//
// Fields:
//  ID            – primary key identifier.
//  Type          – one of the Conv* constants.
//  OwnerID       – creating user.
//  CoupleID      – couple group, set for couple-typed conversations.
//  Title         – optional display title.
//  Metadata      – raw JSON blob as stored (quiz state lives here).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – bumped on every message insert.
//  LastMessageAt – timestamp of the most recent message, drives list order.
type Conversation struct {
	ID            uint64     // conversations.id
	Type          string     // conversations.conversation_type
	OwnerID       uint64     // conversations.owner_id
	CoupleID      *uint64    // conversations.couple_id (nullable)
	Title         *string    // conversations.title (nullable)
	Metadata      *string    // conversations.metadata (nullable JSON)
	CreatedAt     time.Time  // conversations.created_at
	UpdatedAt     time.Time  // conversations.updated_at
	LastMessageAt *time.Time // conversations.last_message_at (nullable)
}

// ConversationParticipant grants a user access to a conversation.  Access
// is allowed iff the requester is the conversation owner or has a
// participant row.  LastReadAt is the read pointer for unread accounting; a
// never-read participant counts as having read nothing.
type ConversationParticipant struct {
	ConversationID uint64     // conversation_participants.conversation_id
	UserID         uint64     // conversation_participants.user_id
	Role           string     // conversation_participants.role
	JoinedAt       time.Time  // conversation_participants.joined_at
	LastReadAt     *time.Time // conversation_participants.last_read_at (nullable)
}

// ConversationSummary is a conversation annotated for listing: the content
// of its most recent message and the caller's unread count.
type ConversationSummary struct {
	Conversation
	LastMessage *string `json:"last_message"`
	UnreadCount int     `json:"unread_count"`
}
