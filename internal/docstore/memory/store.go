package memory

import (
	"context"
	"sort"
	"sync"

	crerr "github.com/cockroachdb/errors"

	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/platform/id"
)

// Commit records one applied batch, in commit order.
type Commit struct {
	Collection string
	Size       int
}

// Store is an in-memory document store for tests and dry runs. It applies
// each batch atomically and journals every commit so tests can assert chunk
// sizes and ordering.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	commits     []Commit
	gen         id.Generator
	failAfter   int // fail Put once this many commits have been applied
	failArmed   bool
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string][]byte),
		gen:         id.NewRandomGenerator(),
	}
}

// FailAfterCommits arms a fault: every Put after n successful commits
// returns an error without applying the batch.
func (s *Store) FailAfterCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
	s.failArmed = true
}

func (s *Store) Put(_ context.Context, collection string, docs []docstore.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) > docstore.MaxBatchOps {
		return crerr.Wrapf(docstore.ErrBatchTooLarge, "collection %s: %d ops", collection, len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failArmed && len(s.commits) >= s.failAfter {
		return crerr.Newf("memory store: injected commit failure for collection %s", collection)
	}

	// stage ids first so the batch applies all-or-nothing
	staged := make([]docstore.Document, 0, len(docs))
	for _, doc := range docs {
		docID := doc.ID
		if docID == "" {
			generated, err := s.gen.NewID()
			if err != nil {
				return crerr.Wrap(err, "generate document id")
			}
			docID = generated
		}
		staged = append(staged, docstore.Document{ID: docID, Body: append([]byte(nil), doc.Body...)})
	}

	bucket, ok := s.collections[collection]
	if !ok {
		bucket = make(map[string][]byte)
		s.collections[collection] = bucket
	}
	for _, doc := range staged {
		bucket[doc.ID] = doc.Body
	}
	s.commits = append(s.commits, Commit{Collection: collection, Size: len(staged)})

	return nil
}

func (s *Store) All(_ context.Context, collection string) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.collections[collection]
	out := make([]docstore.Document, 0, len(bucket))
	for docID, body := range bucket {
		out = append(out, docstore.Document{ID: docID, Body: append([]byte(nil), body...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (s *Store) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.collections[collection])), nil
}

func (s *Store) Close() error {
	return nil
}

// Commits returns the commit journal in order.
func (s *Store) Commits() []Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Commit(nil), s.commits...)
}
