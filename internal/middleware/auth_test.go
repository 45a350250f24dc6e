package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finovai/finovai-backend/internal/repository"
)

func runSessionAuth(t *testing.T, mock func(sqlmock.Sqlmock), authorize string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if mock != nil {
		mock(m)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if authorize != "" {
		req.Header.Set(echo.HeaderAuthorization, authorize)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := SessionAuth(repository.NewSessionRepo(db))(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, reached
}

func TestSessionAuthRejectsMissingHeader(t *testing.T) {
	rec, reached := runSessionAuth(t, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached, "handler must not run without a credential")
}

func TestSessionAuthRejectsUnknownToken(t *testing.T) {
	rec, reached := runSessionAuth(t, func(m sqlmock.Sqlmock) {
		m.ExpectQuery("SELECT u.id,u.phone").
			WithArgs("deadbeef", sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)
	}, "Bearer deadbeef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
	assert.Contains(t, rec.Body.String(), "Sesion invalida")
}

func TestSessionAuthInjectsUserAndTouches(t *testing.T) {
	now := time.Now().UTC()
	db, m, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rows := sqlmock.NewRows([]string{"id", "phone", "phone_verified", "display_name", "couple_id", "created_at", "updated_at"}).
		AddRow(7, "+56911111111", true, nil, nil, now, now)
	m.ExpectQuery("SELECT u.id,u.phone").
		WithArgs("deadbeef", sqlmock.AnyArg()).
		WillReturnRows(rows)
	m.ExpectExec("UPDATE sessions SET last_used_at").
		WithArgs(sqlmock.AnyArg(), "deadbeef").
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer deadbeef")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SessionAuth(repository.NewSessionRepo(db))(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		assert.Equal(t, uint64(7), u.ID)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, m.ExpectationsWereMet())
}

func TestBearerToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc123")
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "abc123", BearerToken(c))

	req.Header.Set(echo.HeaderAuthorization, "Basic abc123")
	assert.Equal(t, "", BearerToken(c))
}
