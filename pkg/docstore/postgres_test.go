package docstore

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestPostgresStoreGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgresStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM documents WHERE collection = $1 AND key = $2")).
		WithArgs("users", "1000").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"name":"A"}`)))

	var out sample
	require.NoError(t, s.Get(context.Background(), "users", "1000", &out))
	assert.Equal(t, "A", out.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgresStore(db)

	mock.ExpectQuery("SELECT body FROM documents").
		WithArgs("users", "1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	var out sample
	assert.ErrorIs(t, s.Get(context.Background(), "users", "1", &out), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFindOne(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgresStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("body->>$2 = $3")).
		WithArgs("users", "contact", "0771").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"name":"A","contact":"0771"}`)))

	var out sample
	require.NoError(t, s.FindOne(context.Background(), "users", "contact", "0771", &out))
	assert.Equal(t, "A", out.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgresStore(db)

	mock.ExpectQuery("SELECT key, body, revision FROM documents").
		WithArgs("metadata", "user_counter").
		WillReturnRows(sqlmock.NewRows([]string{"key", "body", "revision"}).AddRow("user_counter", []byte(`{"current":1000}`), 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET body = $3")).
		WithArgs("metadata", "user_counter", `{"current":1001}`, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Update(context.Background(), "metadata", "user_counter", func(cur []byte, exists bool) ([]byte, error) {
		assert.True(t, exists)
		assert.JSONEq(t, `{"current":1000}`, string(cur))
		return []byte(`{"current":1001}`), nil
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateInsertsMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgresStore(db)

	mock.ExpectQuery("SELECT key, body, revision FROM documents").
		WithArgs("metadata", "user_counter").
		WillReturnRows(sqlmock.NewRows([]string{"key", "body", "revision"}))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (collection, key) DO NOTHING")).
		WithArgs("metadata", "user_counter", `{"current":1000}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Update(context.Background(), "metadata", "user_counter", func(cur []byte, exists bool) ([]byte, error) {
		assert.False(t, exists)
		return []byte(`{"current":1000}`), nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreReplaceAllRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE collection = $1")).
		WithArgs("courses").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO documents").
		WithArgs("courses", "a", sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.ReplaceAll(context.Background(), "courses", map[string]interface{}{"a": sample{Name: "a"}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := NewPostgresStore(db)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS documents")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
