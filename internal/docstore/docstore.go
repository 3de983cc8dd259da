package docstore

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Collection names in the target store.
const (
	CollectionPlayers           = "players"
	CollectionTeams             = "teams"
	CollectionSeasons           = "seasons"
	CollectionPlayerTeamSeasons = "player_team_seasons"
)

// MaxBatchOps is the hard per-commit operation cap the store enforces.
// Batches are sized at construction time; a Put that exceeds this limit is
// rejected outright.
const MaxBatchOps = 500

var ErrBatchTooLarge = errors.New("docstore: batch exceeds max operations per commit")

// Document is one JSON document. An empty ID asks the store to assign an
// opaque auto-generated id, which makes repeated writes duplicate rather
// than overwrite.
type Document struct {
	ID   string
	Body []byte
}

// Store is a document-oriented store organized into named collections.
// Put commits an entire batch atomically; partial application is never
// observable. Count backs post-import verification.
type Store interface {
	Put(ctx context.Context, collection string, docs []Document) error
	All(ctx context.Context, collection string) ([]Document, error)
	Count(ctx context.Context, collection string) (int64, error)
	Close() error
}
