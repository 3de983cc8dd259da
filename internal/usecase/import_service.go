package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/platform/logging"
	"github.com/courtline/recordlink/internal/platform/resilience"
)

// DefaultMaxBatchSize is the documented per-batch cap; it matches the
// store-level limit.
const DefaultMaxBatchSize = 500

// ImportOptions bounds a single ImportAll call. MaxBatchSize zero means the
// default.
type ImportOptions struct {
	MaxBatchSize int `validate:"gte=1,lte=500"`
}

// ImportService partitions documents into size-bounded chunks and commits
// them sequentially against the target store. Chunk commits are atomic at
// the store level; a failed commit halts the run and leaves prior chunks
// committed. The post-commit count check is a diagnostic, never an error.
type ImportService struct {
	store    docstore.Store
	logger   *logging.Logger
	validate *validator.Validate
	retry    resilience.RetryConfig
}

func NewImportService(store docstore.Store, logger *logging.Logger, retry resilience.RetryConfig) *ImportService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ImportService{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		retry:    resilience.NormalizeRetryConfig(retry),
	}
}

// ImportAll writes docs to the named collection and returns how many were
// committed. An empty docs slice returns 0 without contacting the store.
// On a chunk failure the count of already-committed documents is returned
// alongside the error.
func (s *ImportService) ImportAll(ctx context.Context, collection string, docs []docstore.Document, opts ImportOptions) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportAll")
	defer span.End()

	if s.store == nil {
		return 0, ErrStoreUnavailable
	}
	if collection == "" {
		return 0, fmt.Errorf("%w: collection is required", ErrInvalidInput)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if opts.MaxBatchSize == 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if err := s.validate.StructCtx(ctx, opts); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	preCount, preCountErr := s.store.Count(ctx, collection)

	chunks := chunkDocuments(docs, opts.MaxBatchSize)
	imported := 0
	for i, chunk := range chunks {
		err := resilience.Retry(ctx, s.retry, func(ctx context.Context) error {
			return s.store.Put(ctx, collection, chunk)
		})
		if err != nil {
			return imported, fmt.Errorf("commit chunk %d/%d to %s: %w", i+1, len(chunks), collection, err)
		}
		imported += len(chunk)
		s.logger.InfoContext(ctx, "chunk committed",
			"collection", collection,
			"chunk", i+1,
			"chunks", len(chunks),
			"size", len(chunk),
			"imported", imported,
		)
	}

	s.verifyCount(ctx, collection, docs, preCount, preCountErr)

	return imported, nil
}

// verifyCount compares the post-commit collection count to what this import
// should have produced. Documents with empty ids always add; documents with
// deterministic ids add or overwrite, so the expectation is a range.
func (s *ImportService) verifyCount(ctx context.Context, collection string, docs []docstore.Document, preCount int64, preCountErr error) {
	if preCountErr != nil {
		s.logger.WarnContext(ctx, "skipping import verification, pre-import count failed",
			"collection", collection, "error", preCountErr)
		return
	}

	actual, err := s.store.Count(ctx, collection)
	if err != nil {
		s.logger.WarnContext(ctx, "post-import count query failed", "collection", collection, "error", err)
		return
	}

	autoID := 0
	for _, doc := range docs {
		if doc.ID == "" {
			autoID++
		}
	}
	minExpected := preCount + int64(autoID)
	maxExpected := preCount + int64(len(docs))

	if actual < minExpected || actual > maxExpected {
		s.logger.WarnContext(ctx, "post-import count mismatch",
			"collection", collection,
			"actual", actual,
			"expected_min", minExpected,
			"expected_max", maxExpected,
		)
		return
	}

	s.logger.InfoContext(ctx, "import verified", "collection", collection, "documents", actual)
}

// chunkDocuments partitions docs into ordered chunks of at most max
// elements. Order is preserved within and across chunks and every document
// lands in exactly one chunk.
func chunkDocuments(docs []docstore.Document, max int) [][]docstore.Document {
	if max <= 0 || len(docs) == 0 {
		return nil
	}

	chunks := make([][]docstore.Document, 0, (len(docs)+max-1)/max)
	for start := 0; start < len(docs); start += max {
		end := start + max
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, docs[start:end])
	}

	return chunks
}
