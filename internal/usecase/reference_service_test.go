package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/docstore/memory"
	"github.com/courtline/recordlink/internal/platform/logging"
	"github.com/courtline/recordlink/internal/platform/resilience"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestImportTeamsIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	svc := NewReferenceService(NewImportService(store, logging.NewNop(), resilience.DefaultRetryConfig()), logging.NewNop())

	path := writeCSV(t, "teams.csv", "team_id,team_name,abbreviation,location\n1,Chicago Bulls,CHI,Chicago\n2,Utah Jazz,UTA,Salt Lake City\n")

	for run := 0; run < 2; run++ {
		imported, err := svc.ImportTeams(context.Background(), path, ImportOptions{})
		if err != nil {
			t.Fatalf("ImportTeams run %d: %v", run+1, err)
		}
		if imported != 2 {
			t.Fatalf("imported = %d, want 2", imported)
		}
	}

	count, err := store.Count(context.Background(), docstore.CollectionTeams)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count after re-import = %d, want 2", count)
	}
}

func TestImportSeasonsAndPlayers(t *testing.T) {
	store := memory.NewStore()
	svc := NewReferenceService(NewImportService(store, logging.NewNop(), resilience.DefaultRetryConfig()), logging.NewNop())

	seasons := writeCSV(t, "seasons.csv", "season_id,season_label,start_year,end_year\n1997,1996-97,1996,1997\n")
	players := writeCSV(t, "players.csv", "player_id,full_name,nicknames,position,birth_date\nmj23,Michael Jordan,Air Jordan,SG,1963-02-17\n")

	if imported, err := svc.ImportSeasons(context.Background(), seasons, ImportOptions{}); err != nil || imported != 1 {
		t.Fatalf("ImportSeasons = %d, %v", imported, err)
	}
	if imported, err := svc.ImportPlayers(context.Background(), players, ImportOptions{}); err != nil || imported != 1 {
		t.Fatalf("ImportPlayers = %d, %v", imported, err)
	}

	docs, err := store.All(context.Background(), docstore.CollectionPlayers)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "mj23" {
		t.Fatalf("player docs = %+v", docs)
	}
}

func TestImportTeamsMissingFile(t *testing.T) {
	svc := NewReferenceService(NewImportService(memory.NewStore(), logging.NewNop(), resilience.DefaultRetryConfig()), logging.NewNop())

	if _, err := svc.ImportTeams(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), ImportOptions{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
