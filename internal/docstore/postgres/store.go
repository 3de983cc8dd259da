package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/platform/id"
)

const (
	upsertDocumentQuery = `INSERT INTO documents (collection, doc_id, body)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, doc_id)
DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`

	selectDocumentsQuery = `SELECT doc_id, body FROM documents WHERE collection = $1 ORDER BY doc_id`

	countDocumentsQuery = `SELECT COUNT(*) FROM documents WHERE collection = $1`
)

// Store keeps every collection in a single documents table keyed by
// (collection, doc_id). Deterministic ids get upsert semantics; empty ids
// are filled with opaque generated ids before insert.
type Store struct {
	db  *sqlx.DB
	gen id.Generator
}

// Open connects to Postgres through the instrumented sqlx driver and
// verifies connectivity before returning.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	db, err := otelsqlx.Open("postgres", dbURL, otelsql.WithDBName(dbNameFromURL(dbURL)))
	if err != nil {
		return nil, crerr.Wrap(err, "open document store")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping document store")
	}

	return New(db), nil
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, gen: id.NewRandomGenerator()}
}

func (s *Store) Put(ctx context.Context, collection string, docs []docstore.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) > docstore.MaxBatchOps {
		return crerr.Wrapf(docstore.ErrBatchTooLarge, "collection %s: %d ops", collection, len(docs))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrapf(err, "begin tx for collection %s", collection)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, doc := range docs {
		docID := doc.ID
		if docID == "" {
			docID, err = s.gen.NewID()
			if err != nil {
				return crerr.Wrap(err, "generate document id")
			}
		}
		if _, err := tx.ExecContext(ctx, upsertDocumentQuery, collection, docID, string(doc.Body)); err != nil {
			return crerr.Wrapf(err, "upsert document %s/%s", collection, docID)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrapf(err, "commit batch for collection %s", collection)
	}

	return nil
}

func (s *Store) All(ctx context.Context, collection string) ([]docstore.Document, error) {
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, selectDocumentsQuery, collection); err != nil {
		return nil, crerr.Wrapf(err, "select collection %s", collection)
	}

	out := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, docstore.Document{ID: row.DocID, Body: []byte(row.Body)})
	}

	return out, nil
}

func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, countDocumentsQuery, collection); err != nil {
		return 0, crerr.Wrapf(err, "count collection %s", collection)
	}

	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type documentRow struct {
	DocID string `db:"doc_id"`
	Body  string `db:"body"`
}
