package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/finovai/finovai-backend/internal/model"
)

// SessionRepo persists and resolves opaque bearer tokens (sessions table).
// Unlike signed tokens, validity is decided entirely by the stored row:
// a session is valid iff the current time is before its expiry.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for a freshly verified user.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at, created_at, last_used_at) VALUES (?,?,?,?,?)",
		s.UserID, s.Token, s.ExpiresAt, s.CreatedAt, s.LastUsedAt)
	return err
}

// Resolve maps a bearer token to its user in a single join.  Expired or
// unknown tokens yield sql.ErrNoRows; callers must treat that as "no
// identity", never as a partial user.
func (r *SessionRepo) Resolve(ctx context.Context, token string, now time.Time) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT u.id,u.phone,u.phone_verified,u.display_name,u.couple_id,u.created_at,u.updated_at
		 FROM sessions s JOIN users u ON s.user_id = u.id
		 WHERE s.token=? AND s.expires_at > ? LIMIT 1`,
		token, now))
}

// Touch updates a session's last-used timestamp.  Best effort: resolution
// must not fail when this write does, so callers ignore the error.
func (r *SessionRepo) Touch(ctx context.Context, token string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET last_used_at=? WHERE token=?", now, token)
	return err
}

// Delete removes a session row on logout.  Deleting an unknown token is
// not an error, which keeps logout idempotent.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token=?", token)
	return err
}
