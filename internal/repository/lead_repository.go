package repository

import (
	"context"
	"database/sql"
	"time"
)

// LeadRepo persists landing-page signups (leads table).
type LeadRepo struct{ DB *sql.DB }

func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{DB: db} }

// Create inserts a lead and returns its ID.
func (r *LeadRepo) Create(ctx context.Context, email, name, diagnosticData string, now time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO leads (email, name, diagnostic_data, created_at) VALUES (?,?,?,?)",
		email, name, diagnosticData, now)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
