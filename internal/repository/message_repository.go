package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/finovai/finovai-backend/internal/model"
)

// MessageRepo provides access to the 'messages' table and to the read
// pointers on conversation_participants.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageColumns = "id,conversation_id,sender_id,sender_type,content,message_type,metadata,created_at"

// Append inserts one message and bumps the conversation's last-message
// timestamp.  Inserts within a single request happen sequentially through
// this method, so the user turn always precedes its reply turns in
// chronological listing.
func (r *MessageRepo) Append(ctx context.Context, conversationID uint64, senderID *uint64, senderType, content, messageType string, metadata *string, now time.Time) (model.Message, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, sender_id, sender_type, content, message_type, metadata, created_at) VALUES (?,?,?,?,?,?,?)",
		conversationID, senderID, senderType, content, messageType, metadata, now)
	if err != nil {
		return model.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE conversations SET last_message_at=?, updated_at=? WHERE id=?",
		now, now, conversationID); err != nil {
		return model.Message{}, err
	}
	return model.Message{
		ID:             uint64(id),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
		Type:           messageType,
		Metadata:       metadata,
		CreatedAt:      now,
	}, nil
}

// ListPage returns the most recent `limit` non-deleted messages strictly
// older than beforeID (or the newest page when beforeID is zero), in
// chronological order.  The same cursor always yields the same page, which
// keeps pagination idempotent.
func (r *MessageRepo) ListPage(ctx context.Context, conversationID uint64, limit int, beforeID uint64) ([]model.Message, error) {
	query := "SELECT " + messageColumns + " FROM messages WHERE conversation_id=? AND deleted_at IS NULL"
	args := []any{conversationID}
	if beforeID > 0 {
		query += " AND id < ?"
		args = append(args, beforeID)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderType,
			&m.Content, &m.Type, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		page = append(page, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// rows come newest-first; flip to chronological
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

// History returns the most recent `limit` non-deleted messages in
// chronological order, used to build the model context window.
func (r *MessageRepo) History(ctx context.Context, conversationID uint64, limit int) ([]model.Message, error) {
	return r.ListPage(ctx, conversationID, limit, 0)
}

// MarkRead moves the user's read pointer on a conversation to now.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID, userID uint64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE conversation_participants SET last_read_at=? WHERE conversation_id=? AND user_id=?",
		now, conversationID, userID)
	return err
}

// SoftDelete marks a message as deleted without removing the row.  Deleted
// messages disappear from history reconstruction and the context window.
// The update is scoped to the conversation and the authoring user, so a
// participant can only delete their own messages; it reports whether a row
// was actually marked.
func (r *MessageRepo) SoftDelete(ctx context.Context, conversationID, messageID, senderID uint64, now time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET deleted_at=? WHERE id=? AND conversation_id=? AND sender_id=? AND deleted_at IS NULL",
		now, messageID, conversationID, senderID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
