package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/finovai/finovai-backend/internal/model"
)

// ConversationRepo provides access to conversations and their participant
// rows.  Creation is transactional so a conversation can never exist
// without its owner participant.
type ConversationRepo struct{ DB *sql.DB }

func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{DB: db} }

const convColumns = "c.id,c.conversation_type,c.owner_id,c.couple_id,c.title,c.metadata,c.created_at,c.updated_at,c.last_message_at"

// GetByID fetches a conversation by id.
func (r *ConversationRepo) GetByID(ctx context.Context, id uint64) (model.Conversation, error) {
	var c model.Conversation
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+convColumns+" FROM conversations c WHERE c.id=? LIMIT 1",
		id).Scan(&c.ID, &c.Type, &c.OwnerID, &c.CoupleID, &c.Title, &c.Metadata, &c.CreatedAt, &c.UpdatedAt, &c.LastMessageAt)
	return c, err
}

// HasAccess reports whether a user may read and write a conversation:
// either they own it or they have a participant row.
func (r *ConversationRepo) HasAccess(ctx context.Context, conversationID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM conversations c
		 LEFT JOIN conversation_participants cp ON c.id = cp.conversation_id AND cp.user_id = ?
		 WHERE c.id=? AND (c.owner_id=? OR cp.user_id IS NOT NULL) LIMIT 1`,
		userID, conversationID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForUser returns every conversation the user owns or participates in,
// most recent activity first.  Each summary carries the latest message
// content and the caller's unread count; a participant who never read
// anything counts from epoch start.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID uint64) ([]model.ConversationSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+convColumns+`,
		  (SELECT m.content FROM messages m
		     WHERE m.conversation_id = c.id AND m.deleted_at IS NULL
		     ORDER BY m.created_at DESC, m.id DESC LIMIT 1) AS last_message,
		  (SELECT COUNT(*) FROM messages m
		     WHERE m.conversation_id = c.id AND m.deleted_at IS NULL
		       AND m.created_at > COALESCE((SELECT cp2.last_read_at FROM conversation_participants cp2
		                                     WHERE cp2.conversation_id = c.id AND cp2.user_id = ?), '1970-01-01')) AS unread_count
		 FROM conversations c
		 LEFT JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.user_id = ?
		 WHERE c.owner_id = ? OR cp.user_id IS NOT NULL
		 ORDER BY COALESCE(c.last_message_at, c.created_at) DESC`,
		userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ConversationSummary
	for rows.Next() {
		var s model.ConversationSummary
		if err := rows.Scan(&s.ID, &s.Type, &s.OwnerID, &s.CoupleID, &s.Title, &s.Metadata,
			&s.CreatedAt, &s.UpdatedAt, &s.LastMessageAt, &s.LastMessage, &s.UnreadCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Participants returns the participant rows of a conversation, owner
// first, then by join time.
func (r *ConversationRepo) Participants(ctx context.Context, conversationID uint64) ([]model.ConversationParticipant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT conversation_id, user_id, role, joined_at, last_read_at
		 FROM conversation_participants
		 WHERE conversation_id = ?
		 ORDER BY role = 'owner' DESC, joined_at ASC`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ConversationParticipant
	for rows.Next() {
		var p model.ConversationParticipant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.Role, &p.JoinedAt, &p.LastReadAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a conversation plus its participant rows in one
// transaction.  Couple-typed conversations require the owner to be in a
// couple; the partner (when one exists) is added as member so both sides
// see the thread.
func (r *ConversationRepo) Create(ctx context.Context, owner model.User, conversationType string, title *string, now time.Time) (model.Conversation, error) {
	coupleType := conversationType == model.ConvCoupleAI || conversationType == model.ConvCoupleDirect
	if coupleType && owner.CoupleID == nil {
		return model.Conversation{}, ErrInvalidCoupleState
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Conversation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO conversations (conversation_type, owner_id, couple_id, title, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		conversationType, owner.ID, owner.CoupleID, title, now, now)
	if err != nil {
		return model.Conversation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Conversation{}, err
	}
	conversationID := uint64(id)

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO conversation_participants (conversation_id, user_id, role, joined_at) VALUES (?,?,?,?)",
		conversationID, owner.ID, model.RoleOwner, now); err != nil {
		return model.Conversation{}, err
	}

	// Couple threads include the partner from the start.  A couple group
	// with no second member yet simply inserts nothing here.
	if coupleType {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id, role, joined_at)
			 SELECT ?, u.id, ?, ? FROM users u WHERE u.couple_id=? AND u.id<>?`,
			conversationID, model.RoleMember, now, *owner.CoupleID, owner.ID); err != nil {
			return model.Conversation{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Conversation{}, err
	}
	committed = true

	return model.Conversation{
		ID:        conversationID,
		Type:      conversationType,
		OwnerID:   owner.ID,
		CoupleID:  owner.CoupleID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateMetadata replaces the conversation's metadata blob (quiz state).
// Callers decode/encode the JSON; this layer only moves the raw text.
func (r *ConversationRepo) UpdateMetadata(ctx context.Context, conversationID uint64, metadata string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE conversations SET metadata=?, updated_at=? WHERE id=?",
		metadata, now, conversationID)
	return err
}
