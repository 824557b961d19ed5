package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	key TEXT NOT NULL,
	body JSONB NOT NULL,
	revision BIGINT NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, key)
)`

// PostgresStore keeps documents in a single JSONB table. Every write bumps revision, which Update uses as a
// compare-and-set guard.
type PostgresStore struct {
	db *sqlx.DB
}

type documentRow struct {
	Key      string `db:"key"`
	Body     []byte `db:"body"`
	Revision int64  `db:"revision"`
}

// NewPostgresStore wraps db.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// Backend implements Store.
func (s *PostgresStore) Backend() string { return "postgres" }

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, collection, key string, dest interface{}) error {
	var body []byte
	err := s.db.GetContext(ctx, &body, `SELECT body FROM documents WHERE collection = $1 AND key = $2`, collection, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get document %s/%s: %w", collection, key, err)
	}
	return decode(body, dest)
}

// Put implements Store.
func (s *PostgresStore) Put(ctx context.Context, collection, key string, value interface{}) error {
	body, err := encode(value)
	if err != nil {
		return err
	}
	const query = `INSERT INTO documents (collection, key, body) VALUES ($1, $2, $3)
ON CONFLICT (collection, key) DO UPDATE SET body = EXCLUDED.body, revision = documents.revision + 1, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, collection, key, string(body)); err != nil {
		return fmt.Errorf("put document %s/%s: %w", collection, key, err)
	}
	return nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, body, revision FROM documents WHERE collection = $1 ORDER BY key`, collection); err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{Key: row.Key, Body: row.Body})
	}
	return docs, nil
}

// FindOne implements Store.
func (s *PostgresStore) FindOne(ctx context.Context, collection, field, value string, dest interface{}) error {
	var body []byte
	const query = `SELECT body FROM documents WHERE collection = $1 AND body->>$2 = $3 ORDER BY key LIMIT 1`
	if err := s.db.GetContext(ctx, &body, query, collection, field, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("find document %s by %s: %w", collection, field, err)
	}
	return decode(body, dest)
}

// ReplaceAll implements Store inside one transaction.
func (s *PostgresStore) ReplaceAll(ctx context.Context, collection string, docs map[string]interface{}) (err error) {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", collection, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("clear documents %s: %w", collection, err)
	}
	for _, k := range keys {
		body, encErr := encode(docs[k])
		if encErr != nil {
			err = encErr
			return err
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO documents (collection, key, body) VALUES ($1, $2, $3)`, collection, k, string(body)); err != nil {
			return fmt.Errorf("insert document %s/%s: %w", collection, k, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", collection, err)
	}
	return nil
}

// Update implements Store. The write only lands if the row still carries the revision that was read.
func (s *PostgresStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	var row documentRow
	err := s.db.GetContext(ctx, &row, `SELECT key, body, revision FROM documents WHERE collection = $1 AND key = $2`, collection, key)
	exists := true
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read document %s/%s: %w", collection, key, err)
		}
		exists = false
	}

	next, err := fn(row.Body, exists)
	if err != nil {
		return err
	}

	var res sql.Result
	if exists {
		res, err = s.db.ExecContext(ctx,
			`UPDATE documents SET body = $3, revision = revision + 1, updated_at = NOW() WHERE collection = $1 AND key = $2 AND revision = $4`,
			collection, key, string(next), row.Revision)
	} else {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO documents (collection, key, body) VALUES ($1, $2, $3) ON CONFLICT (collection, key) DO NOTHING`,
			collection, key, string(next))
	}
	if err != nil {
		return fmt.Errorf("write document %s/%s: %w", collection, key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write document %s/%s: %w", collection, key, err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
