package conversation

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveStoreNilSafe(t *testing.T) {
	var store *ArchiveStore
	ctx := context.Background()
	sess := NewSession("s1")

	assert.Nil(t, NewArchiveStore(nil))

	_, err := store.EnsureConversation(ctx, sess)
	assert.NoError(t, err)
	assert.NoError(t, store.AppendMessage(ctx, sess, Message{Role: "user", Content: "hola"}))
	assert.NoError(t, store.EndConversation(ctx, "s1"))

	messages, err := store.GetMessages(ctx, "s1", 0)
	assert.NoError(t, err)
	assert.Nil(t, messages)
}

func TestArchiveStoreAppendMessageCreatesConversation(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	store := NewArchiveStore(db)
	sess := NewSession("s1")
	sess.Stage = StageMainMenu
	sess.UserEmail = "ana@example.com"

	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("s1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO conversations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO conversation_messages").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE conversations SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.AppendMessage(context.Background(), sess, Message{Role: "user", Content: "hola"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveStoreAppendMessageDuplicateSkipsCounters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	store := NewArchiveStore(db)
	sess := NewSession("s1")

	existing := sqlmock.NewRows([]string{"id"}).AddRow("5f2f3f44-9d4a-4d76-9c00-aaaaaaaaaaaa")
	mock.ExpectQuery("SELECT id FROM conversations").WillReturnRows(existing)
	mock.ExpectExec("UPDATE conversations SET stage").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO conversation_messages").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.AppendMessage(context.Background(), sess, Message{Role: "assistant", Content: "hola"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveStoreEndConversation(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	store := NewArchiveStore(db)

	mock.ExpectExec("UPDATE conversations SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.EndConversation(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
