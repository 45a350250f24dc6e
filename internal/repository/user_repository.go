package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/finovai/finovai-backend/internal/model"
)

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,phone,phone_verified,display_name,couple_id,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Phone, &u.PhoneVerified, &u.DisplayName, &u.CoupleID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByPhone fetches a user by normalized phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone=? LIMIT 1", phone))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// CreateVerified inserts a user whose phone just passed OTP verification
// and returns its ID.
func (r *UserRepo) CreateVerified(ctx context.Context, phone string, now time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (phone, phone_verified, created_at, updated_at) VALUES (?,1,?,?)",
		phone, now, now)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrPhoneExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// MarkPhoneVerified flags an existing user's phone as verified.
func (r *UserRepo) MarkPhoneVerified(ctx context.Context, id uint64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET phone_verified=1, updated_at=? WHERE id=?", now, id)
	return err
}

// UpdateDisplayName sets the user's display name.
func (r *UserRepo) UpdateDisplayName(ctx context.Context, id uint64, name string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET display_name=?, updated_at=? WHERE id=?", name, now, id)
	return err
}

// GetPartner returns the other user in a couple group.  sql.ErrNoRows means
// the couple has no second member yet.
func (r *UserRepo) GetPartner(ctx context.Context, coupleID, selfID uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE couple_id=? AND id<>? LIMIT 1", coupleID, selfID))
}
