package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/finovai/finovai-backend/internal/model"
)

// OTPRepo persists one-time codes (otp_verifications table).  Codes are
// stored as bcrypt hashes; comparison happens in the caller after fetching
// the newest active row for a phone.
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// CountSince returns how many codes were issued for a phone after the given
// cutoff.  The auth handler uses this to enforce the one-per-minute cadence.
func (r *OTPRepo) CountSince(ctx context.Context, phone string, cutoff time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM otp_verifications WHERE phone=? AND created_at > ?",
		phone, cutoff).Scan(&n)
	return n, err
}

// Create inserts a new code row and returns its ID.
func (r *OTPRepo) Create(ctx context.Context, phone, codeHash, purpose string, exp, now time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO otp_verifications (phone, code_hash, purpose, expires_at, attempts, created_at) VALUES (?,?,?,?,0,?)",
		phone, codeHash, purpose, exp, now)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// LatestActive returns the most recent unexpired, unverified code for a
// phone.  sql.ErrNoRows means there is nothing left to verify against.
func (r *OTPRepo) LatestActive(ctx context.Context, phone string, now time.Time) (model.OTPVerification, error) {
	var o model.OTPVerification
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,phone,code_hash,purpose,expires_at,attempts,verified_at,created_at
		 FROM otp_verifications
		 WHERE phone=? AND expires_at > ? AND verified_at IS NULL
		 ORDER BY created_at DESC LIMIT 1`,
		phone, now).Scan(&o.ID, &o.Phone, &o.CodeHash, &o.Purpose, &o.ExpiresAt, &o.Attempts, &o.VerifiedAt, &o.CreatedAt)
	return o, err
}

// IncrementAttempts records a failed verification against a code row.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE otp_verifications SET attempts = attempts + 1 WHERE id=?", id)
	return err
}

// MarkVerified stamps a code as used.  Verified codes never match
// LatestActive again, so they cannot be replayed.
func (r *OTPRepo) MarkVerified(ctx context.Context, id uint64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE otp_verifications SET verified_at=? WHERE id=?", now, id)
	return err
}
