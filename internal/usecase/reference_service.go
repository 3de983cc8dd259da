package usecase

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/courtline/recordlink/internal/csvfile"
	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/platform/logging"
)

// ReferenceService loads canonical reference CSVs and imports them into
// their collections. Reference documents carry deterministic ids derived
// from the source rows, so re-running an import overwrites in place.
type ReferenceService struct {
	importer *ImportService
	logger   *logging.Logger
}

func NewReferenceService(importer *ImportService, logger *logging.Logger) *ReferenceService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReferenceService{importer: importer, logger: logger}
}

func (s *ReferenceService) ImportTeams(ctx context.Context, path string, opts ImportOptions) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.ImportTeams")
	defer span.End()

	teams, err := csvfile.ReadTeams(path)
	if err != nil {
		return 0, fmt.Errorf("read teams file: %w", err)
	}

	docs := make([]docstore.Document, 0, len(teams))
	for _, t := range teams {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("%w: team %q: %v", ErrInvalidInput, t.Abbreviation, err)
		}
		body, err := sonic.Marshal(t)
		if err != nil {
			return 0, fmt.Errorf("encode team %q: %w", t.Abbreviation, err)
		}
		docs = append(docs, docstore.Document{ID: t.DocID(), Body: body})
	}

	return s.importer.ImportAll(ctx, docstore.CollectionTeams, docs, opts)
}

func (s *ReferenceService) ImportSeasons(ctx context.Context, path string, opts ImportOptions) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.ImportSeasons")
	defer span.End()

	seasons, err := csvfile.ReadSeasons(path)
	if err != nil {
		return 0, fmt.Errorf("read seasons file: %w", err)
	}

	docs := make([]docstore.Document, 0, len(seasons))
	for _, sn := range seasons {
		if err := sn.Validate(); err != nil {
			return 0, fmt.Errorf("%w: season %q: %v", ErrInvalidInput, sn.Label, err)
		}
		body, err := sonic.Marshal(sn)
		if err != nil {
			return 0, fmt.Errorf("encode season %q: %w", sn.Label, err)
		}
		docs = append(docs, docstore.Document{ID: sn.DocID(), Body: body})
	}

	return s.importer.ImportAll(ctx, docstore.CollectionSeasons, docs, opts)
}

func (s *ReferenceService) ImportPlayers(ctx context.Context, path string, opts ImportOptions) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceService.ImportPlayers")
	defer span.End()

	players, err := csvfile.ReadPlayers(path)
	if err != nil {
		return 0, fmt.Errorf("read players file: %w", err)
	}

	docs := make([]docstore.Document, 0, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("%w: player %q: %v", ErrInvalidInput, p.ID, err)
		}
		body, err := sonic.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("encode player %q: %w", p.ID, err)
		}
		docs = append(docs, docstore.Document{ID: p.DocID(), Body: body})
	}

	return s.importer.ImportAll(ctx, docstore.CollectionPlayers, docs, opts)
}
