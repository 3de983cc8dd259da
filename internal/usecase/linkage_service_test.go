package usecase

import (
	"context"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/docstore/memory"
	"github.com/courtline/recordlink/internal/domain/performance"
	"github.com/courtline/recordlink/internal/domain/player"
	"github.com/courtline/recordlink/internal/domain/season"
	"github.com/courtline/recordlink/internal/domain/team"
	"github.com/courtline/recordlink/internal/match"
	"github.com/courtline/recordlink/internal/platform/logging"
	"github.com/courtline/recordlink/internal/refdata"
)

func seedCache(t *testing.T) *refdata.Cache {
	t.Helper()
	s := memory.NewStore()
	ctx := context.Background()

	teams := []team.Team{
		{ID: 1, Name: "Chicago Bulls", Abbreviation: "CHI", Location: "Chicago"},
		{ID: 2, Name: "Utah Jazz", Abbreviation: "UTA", Location: "Salt Lake City"},
	}
	for _, item := range teams {
		body, err := sonic.Marshal(item)
		if err != nil {
			t.Fatalf("marshal team: %v", err)
		}
		if err := s.Put(ctx, docstore.CollectionTeams, []docstore.Document{{ID: item.DocID(), Body: body}}); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}

	seasons := []season.Season{
		{ID: 1997, Label: "1996-97", StartYear: 1996, EndYear: 1997},
	}
	for _, item := range seasons {
		body, _ := sonic.Marshal(item)
		if err := s.Put(ctx, docstore.CollectionSeasons, []docstore.Document{{ID: item.DocID(), Body: body}}); err != nil {
			t.Fatalf("seed season: %v", err)
		}
	}

	players := []player.Player{
		{ID: "mj23", FullName: "Michael Jordan"},
		{ID: "sp33", FullName: "Scottie Pippen"},
	}
	for _, item := range players {
		body, _ := sonic.Marshal(item)
		if err := s.Put(ctx, docstore.CollectionPlayers, []docstore.Document{{ID: item.DocID(), Body: body}}); err != nil {
			t.Fatalf("seed player: %v", err)
		}
	}

	cache, err := refdata.Load(ctx, s)
	if err != nil {
		t.Fatalf("load reference cache: %v", err)
	}
	return cache
}

func newLinkage(t *testing.T, opts LinkageOptions) *LinkageService {
	t.Helper()
	svc, err := NewLinkageService(seedCache(t), match.NewAliasResolver(match.DefaultNBATable()), logging.NewNop(), opts)
	if err != nil {
		t.Fatalf("NewLinkageService: %v", err)
	}
	return svc
}

func TestLinkAllMatchesFuzzyPlayer(t *testing.T) {
	svc := newLinkage(t, LinkageOptions{})

	report, err := svc.LinkAll(context.Background(), []performance.RawRecord{
		{PlayerName: "Michael Jordann", TeamCode: "Team.CHICAGO_BULLS", SeasonID: "1997", GamesPlayed: "82"},
	})
	if err != nil {
		t.Fatalf("LinkAll: %v", err)
	}
	if report.MatchedCount != 1 || report.UnmatchedCount != 0 {
		t.Fatalf("matched/unmatched = %d/%d, want 1/0", report.MatchedCount, report.UnmatchedCount)
	}

	linked := report.Linked()[0]
	if linked.PlayerID != "mj23" {
		t.Fatalf("player id = %q, want mj23", linked.PlayerID)
	}
	if linked.PlayerName != "Michael Jordan" {
		t.Fatalf("player name snapshot = %q, want canonical form", linked.PlayerName)
	}
	if linked.TeamID != 1 || linked.TeamAbbreviation != "CHI" || linked.TeamName != "Chicago Bulls" {
		t.Fatalf("team snapshot = %+v", linked)
	}
	if linked.SeasonID != 1997 || linked.SeasonLabel != "1996-97" {
		t.Fatalf("season snapshot = %+v", linked)
	}
	if linked.GamesPlayed != 82 {
		t.Fatalf("games played = %d, want 82", linked.GamesPlayed)
	}
}

func TestLinkAllNonNumericSeasonID(t *testing.T) {
	svc := newLinkage(t, LinkageOptions{})

	report, err := svc.LinkAll(context.Background(), []performance.RawRecord{
		{PlayerName: "Michael Jordan", TeamCode: "Team.CHICAGO_BULLS", SeasonID: "not-a-number", GamesPlayed: "82"},
	})
	if err != nil {
		t.Fatalf("LinkAll: %v", err)
	}
	if report.UnmatchedCount != 1 {
		t.Fatalf("unmatched = %d, want 1", report.UnmatchedCount)
	}

	u := report.Unmatched()[0]
	if u.SeasonMatched {
		t.Fatalf("season flagged matched for non-numeric id")
	}
	if !u.TeamMatched || !u.PlayerMatched {
		t.Fatalf("team/player should resolve independently, got %+v", u)
	}
	if u.Reason() != "season unresolved" {
		t.Fatalf("reason = %q", u.Reason())
	}
}

func TestLinkAllGamesPlayedFallback(t *testing.T) {
	svc := newLinkage(t, LinkageOptions{})

	report, err := svc.LinkAll(context.Background(), []performance.RawRecord{
		{PlayerName: "Scottie Pippen", TeamCode: "Team.CHICAGO_BULLS", SeasonID: "1997", GamesPlayed: "n/a"},
	})
	if err != nil {
		t.Fatalf("LinkAll: %v", err)
	}
	if report.MatchedCount != 1 {
		t.Fatalf("matched = %d, want 1", report.MatchedCount)
	}
	if got := report.Linked()[0].GamesPlayed; got != 0 {
		t.Fatalf("games played = %d, want 0 fallback", got)
	}
}

func TestLinkAllUnknownTeamAndPlayer(t *testing.T) {
	svc := newLinkage(t, LinkageOptions{})

	report, err := svc.LinkAll(context.Background(), []performance.RawRecord{
		{PlayerName: "Totally Unknown", TeamCode: "Team.NOWHERE_NOBODIES", SeasonID: "1997"},
	})
	if err != nil {
		t.Fatalf("LinkAll: %v", err)
	}

	u := report.Unmatched()[0]
	if u.TeamMatched || u.PlayerMatched {
		t.Fatalf("unexpected resolution: %+v", u)
	}
	if !u.SeasonMatched {
		t.Fatalf("season should resolve")
	}
	if u.Reason() != "team unresolved; player unresolved" {
		t.Fatalf("reason = %q", u.Reason())
	}
}

func TestLinkAllParallelPreservesOrder(t *testing.T) {
	records := make([]performance.RawRecord, 40)
	for i := range records {
		if i%2 == 0 {
			records[i] = performance.RawRecord{PlayerName: "Michael Jordan", TeamCode: "Team.CHICAGO_BULLS", SeasonID: "1997", GamesPlayed: "82"}
		} else {
			records[i] = performance.RawRecord{PlayerName: "Nobody Here", TeamCode: "Team.CHICAGO_BULLS", SeasonID: "1997"}
		}
	}

	serial := newLinkage(t, LinkageOptions{Workers: 1})
	parallel := newLinkage(t, LinkageOptions{Workers: 4})

	serialReport, err := serial.LinkAll(context.Background(), records)
	if err != nil {
		t.Fatalf("serial LinkAll: %v", err)
	}
	parallelReport, err := parallel.LinkAll(context.Background(), records)
	if err != nil {
		t.Fatalf("parallel LinkAll: %v", err)
	}

	if serialReport.MatchedCount != 20 || parallelReport.MatchedCount != 20 {
		t.Fatalf("matched = %d/%d, want 20/20", serialReport.MatchedCount, parallelReport.MatchedCount)
	}
	for i := range records {
		if serialReport.Results[i].Matched() != parallelReport.Results[i].Matched() {
			t.Fatalf("result %d diverges between serial and parallel runs", i)
		}
	}
}

func TestMatchRateFormatting(t *testing.T) {
	empty := LinkageReport{}
	if got := empty.MatchRateString(); got != "0.0%" {
		t.Fatalf("empty rate = %q, want 0.0%%", got)
	}

	partial := LinkageReport{Processed: 3, MatchedCount: 2, UnmatchedCount: 1}
	if got := partial.MatchRateString(); got != "66.7%" {
		t.Fatalf("rate = %q, want 66.7%%", got)
	}
}

func TestLinkedDocumentsIDs(t *testing.T) {
	items := []performance.Linked{
		{PlayerID: "mj23", TeamID: 1, SeasonID: 1997, GamesPlayed: 82},
	}

	docs, err := LinkedDocuments(items, false)
	if err != nil {
		t.Fatalf("LinkedDocuments: %v", err)
	}
	if docs[0].ID != "" {
		t.Fatalf("default import should leave id assignment to the store, got %q", docs[0].ID)
	}

	docs, err = LinkedDocuments(items, true)
	if err != nil {
		t.Fatalf("LinkedDocuments deterministic: %v", err)
	}
	if docs[0].ID != "mj23:1:1997" {
		t.Fatalf("composite id = %q", docs[0].ID)
	}
}
