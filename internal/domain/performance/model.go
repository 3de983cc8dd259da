package performance

import (
	"fmt"
	"strings"
)

// RawRecord is one row of an externally scraped performance CSV. Every field
// is untyped text; numeric fields are parsed downstream with documented
// fallbacks.
type RawRecord struct {
	PlayerName  string
	TeamCode    string
	SeasonYear  string
	SeasonID    string
	GamesPlayed string
	Reason      string
}

// Linked is a fully reconciled join record destined for the
// player_team_seasons collection. The display fields are snapshots copied
// from the canonical entities at linkage time; they do not track later
// renames.
type Linked struct {
	PlayerID         string `json:"player_id"`
	TeamID           int64  `json:"team_id"`
	SeasonID         int64  `json:"season_id"`
	GamesPlayed      int    `json:"games_played"`
	PlayerName       string `json:"player_name"`
	TeamAbbreviation string `json:"team_abbr"`
	TeamName         string `json:"team_name"`
	SeasonLabel      string `json:"season_label"`
}

// CompositeKey is a deterministic document id for callers that want
// idempotent join-record writes. The default import path does not use it.
func (l Linked) CompositeKey() string {
	return fmt.Sprintf("%s:%d:%d", l.PlayerID, l.TeamID, l.SeasonID)
}

// Unmatched retains the original record plus per-field resolution flags for
// operator triage.
type Unmatched struct {
	Record        RawRecord
	TeamMatched   bool
	SeasonMatched bool
	PlayerMatched bool
}

// Reason names the reference lookups that failed, in team/season/player order.
func (u Unmatched) Reason() string {
	var parts []string
	if !u.TeamMatched {
		parts = append(parts, "team unresolved")
	}
	if !u.SeasonMatched {
		parts = append(parts, "season unresolved")
	}
	if !u.PlayerMatched {
		parts = append(parts, "player unresolved")
	}

	return strings.Join(parts, "; ")
}

// Result is the outcome for a single raw record. Exactly one of Linked or
// Unmatched is set.
type Result struct {
	Linked    *Linked
	Unmatched *Unmatched
}

func (r Result) Matched() bool {
	return r.Linked != nil
}
