package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"

	"github.com/courtline/recordlink/internal/domain/performance"
	"github.com/courtline/recordlink/internal/match"
	"github.com/courtline/recordlink/internal/platform/logging"
	"github.com/courtline/recordlink/internal/refdata"
)

// DefaultMatchThreshold is the minimum similarity a fuzzy player match must
// reach. Lifted into configuration rather than buried in the loop so
// matching policy stays testable.
const DefaultMatchThreshold = 0.85

// DefaultProgressEvery is how many records pass between progress log lines.
const DefaultProgressEvery = 1000

// LinkageOptions tunes one linkage run. Zero values take the defaults.
type LinkageOptions struct {
	Threshold     float64 `validate:"gt=0,lte=1"`
	Workers       int     `validate:"gte=1,lte=64"`
	ProgressEvery int     `validate:"gte=1"`
}

// LinkageService resolves raw performance records against the frozen
// reference snapshot: team via alias resolution, season via id lookup,
// player via fuzzy matching. Matching is per-record independent, so runs
// with Workers > 1 shard records across a bounded pool; results are
// recombined into input order before anything downstream sees them.
type LinkageService struct {
	cache    *refdata.Cache
	resolver *match.AliasResolver
	matcher  *match.Matcher
	logger   *logging.Logger
	opts     LinkageOptions
}

func NewLinkageService(cache *refdata.Cache, resolver *match.AliasResolver, logger *logging.Logger, opts LinkageOptions) (*LinkageService, error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: reference cache is required", ErrReferenceData)
	}
	if resolver == nil {
		return nil, fmt.Errorf("%w: alias resolver is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}

	if opts.Threshold == 0 {
		opts.Threshold = DefaultMatchThreshold
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	if opts.ProgressEvery == 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &LinkageService{
		cache:    cache,
		resolver: resolver,
		matcher:  match.NewMatcher(cache.Players()),
		logger:   logger,
		opts:     opts,
	}, nil
}

// LinkageReport summarizes one run. Results holds exactly one entry per
// input record, in input order.
type LinkageReport struct {
	Processed      int
	MatchedCount   int
	UnmatchedCount int
	Results        []performance.Result
}

func (r LinkageReport) Linked() []performance.Linked {
	out := make([]performance.Linked, 0, r.MatchedCount)
	for _, res := range r.Results {
		if res.Linked != nil {
			out = append(out, *res.Linked)
		}
	}
	return out
}

func (r LinkageReport) Unmatched() []performance.Unmatched {
	out := make([]performance.Unmatched, 0, r.UnmatchedCount)
	for _, res := range r.Results {
		if res.Unmatched != nil {
			out = append(out, *res.Unmatched)
		}
	}
	return out
}

// MatchRate is the matched percentage of all processed records.
func (r LinkageReport) MatchRate() float64 {
	if r.Processed == 0 {
		return 0
	}
	return float64(r.MatchedCount) / float64(r.Processed) * 100
}

// MatchRateString formats the rate with one decimal place.
func (r LinkageReport) MatchRateString() string {
	return fmt.Sprintf("%.1f%%", r.MatchRate())
}

// LinkAll classifies every record as matched or unmatched. Per-record
// resolution failures never abort the run; they land in the unmatched set
// with per-field flags for triage.
func (s *LinkageService) LinkAll(ctx context.Context, records []performance.RawRecord) (LinkageReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LinkageService.LinkAll")
	defer span.End()

	results := make([]performance.Result, len(records))

	if s.opts.Workers > 1 && len(records) > 1 {
		if err := s.linkParallel(ctx, records, results); err != nil {
			return LinkageReport{}, err
		}
	} else {
		for i, rec := range records {
			results[i] = s.resolveRecord(rec)
			if (i+1)%s.opts.ProgressEvery == 0 {
				s.logger.InfoContext(ctx, "linkage progress", "processed", i+1, "total", len(records))
			}
		}
	}

	report := LinkageReport{Processed: len(records), Results: results}
	for _, res := range results {
		if res.Matched() {
			report.MatchedCount++
		} else {
			report.UnmatchedCount++
		}
	}

	s.logger.InfoContext(ctx, "record linkage finished",
		"processed", report.Processed,
		"matched", report.MatchedCount,
		"unmatched", report.UnmatchedCount,
		"match_rate", report.MatchRateString(),
	)

	return report, nil
}

func (s *LinkageService) linkParallel(ctx context.Context, records []performance.RawRecord, results []performance.Result) error {
	p, err := ants.NewPool(s.opts.Workers)
	if err != nil {
		return fmt.Errorf("create matching worker pool: %w", err)
	}
	defer p.Release()

	var processed atomic.Int64
	var workers sync.WaitGroup
	for i := range records {
		i := i
		workers.Add(1)
		if err := p.Submit(func() {
			defer workers.Done()
			results[i] = s.resolveRecord(records[i])
			if n := processed.Add(1); n%int64(s.opts.ProgressEvery) == 0 {
				s.logger.InfoContext(ctx, "linkage progress", "processed", n, "total", len(records))
			}
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit record to worker pool: %w", err)
		}
	}
	workers.Wait()

	return nil
}

// resolveRecord performs the three independent reference lookups. A team
// only counts as matched when the alias resolves and the abbreviation
// exists in the reference snapshot, so matched output never dangles.
func (s *LinkageService) resolveRecord(rec performance.RawRecord) performance.Result {
	teamMatched := false
	var teamID int64
	var teamAbbr, teamName string
	if abbr, ok := s.resolver.Resolve(rec.TeamCode); ok {
		if t, ok := s.cache.TeamByAbbreviation(abbr); ok {
			teamMatched = true
			teamID = t.ID
			teamAbbr = t.Abbreviation
			teamName = t.Name
		}
	}

	seasonMatched := false
	var seasonID int64
	var seasonLabel string
	if parsed, err := strconv.ParseInt(strings.TrimSpace(rec.SeasonID), 10, 64); err == nil {
		if sn, ok := s.cache.SeasonByID(parsed); ok {
			seasonMatched = true
			seasonID = sn.ID
			seasonLabel = sn.Label
		}
	}

	candidate, playerMatched := s.matcher.FindBest(rec.PlayerName, s.opts.Threshold)

	if teamMatched && seasonMatched && playerMatched {
		return performance.Result{Linked: &performance.Linked{
			PlayerID:         candidate.Player.ID,
			TeamID:           teamID,
			SeasonID:         seasonID,
			GamesPlayed:      parseGamesPlayed(rec.GamesPlayed),
			PlayerName:       candidate.Player.FullName,
			TeamAbbreviation: teamAbbr,
			TeamName:         teamName,
			SeasonLabel:      seasonLabel,
		}}
	}

	return performance.Result{Unmatched: &performance.Unmatched{
		Record:        rec,
		TeamMatched:   teamMatched,
		SeasonMatched: seasonMatched,
		PlayerMatched: playerMatched,
	}}
}

// parseGamesPlayed applies the documented fallback: unparsable integers
// default to 0.
func parseGamesPlayed(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
