package model

import "time"

// Sender types.  AI- and system-authored messages carry a NULL sender id.
const (
	SenderUser   = "user"
	SenderAI     = "ai"
	SenderSystem = "system"
)

// Message types.  "buttons" and "score_result" carry structured metadata the
// client renders; plain "text" has none.
const (
	MsgText        = "text"
	MsgButtons     = "buttons"
	MsgScoreResult = "score_result"
)

// Message is one entry in a conversation.  Messages are strictly ordered by
// creation within their conversation and are never mutated after insert
// except for soft deletion; soft-deleted rows are excluded from history and
// from the model context window.
//
// Fields:
//  ID             – primary key identifier, also the pagination cursor.
//  ConversationID – owning conversation.
//  SenderID       – authoring user; NULL for ai/system messages.
//  SenderType     – one of the Sender* constants.
//  Content        – textual body.
//  Type           – one of the Msg* constants.
//  Metadata       – raw JSON for buttons / score payloads (nullable).
//  CreatedAt      – creation timestamp.
//  DeletedAt      – soft-delete marker (nullable).
type Message struct {
	ID             uint64     `json:"id"`              // messages.id
	ConversationID uint64     `json:"conversation_id"` // messages.conversation_id
	SenderID       *uint64    `json:"sender_id"`       // messages.sender_id (nullable)
	SenderType     string     `json:"sender_type"`     // messages.sender_type
	Content        string     `json:"content"`         // messages.content
	Type           string     `json:"message_type"`    // messages.message_type
	Metadata       *string    `json:"metadata"`        // messages.metadata (nullable JSON)
	CreatedAt      time.Time  `json:"created_at"`      // messages.created_at
	DeletedAt      *time.Time `json:"-"`               // messages.deleted_at (nullable)
}

// ButtonOption is one choice offered by a "buttons" message.  Value is the
// literal command token the client sends back as the message content.
type ButtonOption struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Variant string `json:"variant"` // "primary" | "secondary"
}

// ButtonsMetadata is the persisted metadata of a "buttons" message.
type ButtonsMetadata struct {
	Buttons []ButtonOption `json:"buttons"`
}

// ScoreResultMetadata is the persisted metadata of a "score_result" message.
type ScoreResultMetadata struct {
	Score        int    `json:"score"`
	Stage        string `json:"stage"`
	StageMessage string `json:"stageMessage"`
	Color        string `json:"color"`
}
