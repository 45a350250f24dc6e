package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finovai/finovai-backend/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestSessionResolve(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "phone", "phone_verified", "display_name", "couple_id", "created_at", "updated_at"}).
		AddRow(7, "+56911111111", true, nil, nil, now, now)
	mock.ExpectQuery("SELECT u.id,u.phone,u.phone_verified").
		WithArgs("deadbeef", now).
		WillReturnRows(rows)

	u, err := repo.Resolve(context.Background(), "deadbeef", now)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "+56911111111", u.Phone)
	assert.Nil(t, u.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionResolveExpiredYieldsNoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT u.id,u.phone,u.phone_verified").
		WithArgs("stale", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Resolve(context.Background(), "stale", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSessionCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)
	now := time.Now().UTC()
	exp := now.AddDate(0, 0, 30)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(uint64(7), "deadbeef", exp, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := model.Session{UserID: 7, Token: "deadbeef", ExpiresAt: exp, CreatedAt: now, LastUsedAt: now}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionDeleteIdempotent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	// Zero rows affected is still success.
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs("unknown").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "unknown"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
