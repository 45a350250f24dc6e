package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finovai/finovai-backend/internal/model"
)

func TestMessageAppendBumpsConversation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMessageRepo(db)
	now := time.Now().UTC()
	sender := uint64(7)

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(uint64(1), &sender, model.SenderUser, "hola", model.MsgText, nil, now).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("UPDATE conversations SET last_message_at").
		WithArgs(now, now, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg, err := repo.Append(context.Background(), 1, &sender, model.SenderUser, "hola", model.MsgText, nil, now)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), msg.ID)
	assert.Equal(t, model.SenderUser, msg.SenderType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageListPageReturnsChronologicalOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMessageRepo(db)
	now := time.Now().UTC()

	// The query returns newest-first; callers get chronological order.
	rows := sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "sender_type", "content", "message_type", "metadata", "created_at"}).
		AddRow(3, 1, nil, model.SenderAI, "tercero", model.MsgText, nil, now).
		AddRow(2, 1, nil, model.SenderAI, "segundo", model.MsgText, nil, now.Add(-time.Minute)).
		AddRow(1, 1, nil, model.SenderAI, "primero", model.MsgText, nil, now.Add(-2*time.Minute))
	mock.ExpectQuery("FROM messages WHERE conversation_id").
		WithArgs(uint64(1), 3).
		WillReturnRows(rows)

	page, err := repo.ListPage(context.Background(), 1, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "primero", page[0].Content)
	assert.Equal(t, "tercero", page[2].Content)
}

func TestMessageListPageWithCursor(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMessageRepo(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "sender_type", "content", "message_type", "metadata", "created_at"}).
		AddRow(4, 1, nil, model.SenderAI, "anterior", model.MsgText, nil, now)
	mock.ExpectQuery("AND id < ").
		WithArgs(uint64(1), uint64(5), 20).
		WillReturnRows(rows)

	page, err := repo.ListPage(context.Background(), 1, 20, 5)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(4), page[0].ID)
}

func TestMessageListPageEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMessageRepo(db)

	mock.ExpectQuery("FROM messages WHERE conversation_id").
		WithArgs(uint64(1), 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "sender_id", "sender_type", "content", "message_type", "metadata", "created_at"}))

	page, err := repo.ListPage(context.Background(), 1, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMessageSoftDeleteScopedToAuthor(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMessageRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE messages SET deleted_at").
		WithArgs(now, uint64(2), uint64(1), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.SoftDelete(context.Background(), 1, 2, 7, now)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Someone else's message matches no row and reports false, not an error.
	mock.ExpectExec("UPDATE messages SET deleted_at").
		WithArgs(now, uint64(2), uint64(1), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.SoftDelete(context.Background(), 1, 2, 9, now)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMessageMarkRead(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMessageRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE conversation_participants SET last_read_at").
		WithArgs(now, uint64(1), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkRead(context.Background(), 1, 7, now))
}
