package match

import "strings"

// externalKeyPrefix is the naming convention the scrape source uses for team
// identifiers, e.g. "Team.BOSTON_CELTICS".
const externalKeyPrefix = "Team."

// AliasResolver maps external team-code variants, including historical and
// post-relocation names, to one canonical abbreviation per franchise
// lineage. The table is copied at construction and never mutated, so a
// resolver is safe for concurrent use and deterministic under test with a
// substitute table.
type AliasResolver struct {
	table         map[string]string
	abbreviations map[string]struct{}
}

func NewAliasResolver(table map[string]string) *AliasResolver {
	frozen := make(map[string]string, len(table))
	abbreviations := make(map[string]struct{}, len(table))
	for key, abbr := range table {
		frozen[key] = abbr
		abbreviations[abbr] = struct{}{}
	}

	return &AliasResolver{table: frozen, abbreviations: abbreviations}
}

// Resolve maps an external team code to its canonical abbreviation. It tries
// an exact table lookup, then a reconstructed external key (uppercased,
// whitespace to underscores, conventional prefix), then accepts the
// uppercased raw input if it is itself a canonical abbreviation. Returns
// false when nothing matches; never panics on odd input.
func (r *AliasResolver) Resolve(externalCode string) (string, bool) {
	if abbr, ok := r.table[externalCode]; ok {
		return abbr, true
	}

	upper := strings.ToUpper(strings.TrimSpace(externalCode))
	reconstructed := externalKeyPrefix + strings.ReplaceAll(upper, " ", "_")
	if abbr, ok := r.table[reconstructed]; ok {
		return abbr, true
	}

	if _, ok := r.abbreviations[upper]; ok {
		return upper, true
	}

	return "", false
}

// DefaultNBATable covers current franchises plus the historical and
// relocated lineages that appear in scraped archives. Multiple external keys
// may map to the same abbreviation.
func DefaultNBATable() map[string]string {
	return map[string]string{
		"Team.ATLANTA_HAWKS":          "ATL",
		"Team.BOSTON_CELTICS":         "BOS",
		"Team.BROOKLYN_NETS":          "BKN",
		"Team.CHARLOTTE_HORNETS":      "CHA",
		"Team.CHICAGO_BULLS":          "CHI",
		"Team.CLEVELAND_CAVALIERS":    "CLE",
		"Team.DALLAS_MAVERICKS":       "DAL",
		"Team.DENVER_NUGGETS":         "DEN",
		"Team.DETROIT_PISTONS":        "DET",
		"Team.GOLDEN_STATE_WARRIORS":  "GSW",
		"Team.HOUSTON_ROCKETS":        "HOU",
		"Team.INDIANA_PACERS":         "IND",
		"Team.LOS_ANGELES_CLIPPERS":   "LAC",
		"Team.LOS_ANGELES_LAKERS":     "LAL",
		"Team.MEMPHIS_GRIZZLIES":      "MEM",
		"Team.MIAMI_HEAT":             "MIA",
		"Team.MILWAUKEE_BUCKS":        "MIL",
		"Team.MINNESOTA_TIMBERWOLVES": "MIN",
		"Team.NEW_ORLEANS_PELICANS":   "NOP",
		"Team.NEW_YORK_KNICKS":        "NYK",
		"Team.OKLAHOMA_CITY_THUNDER":  "OKC",
		"Team.ORLANDO_MAGIC":          "ORL",
		"Team.PHILADELPHIA_76ERS":     "PHI",
		"Team.PHOENIX_SUNS":           "PHX",
		"Team.PORTLAND_TRAIL_BLAZERS": "POR",
		"Team.SACRAMENTO_KINGS":       "SAC",
		"Team.SAN_ANTONIO_SPURS":      "SAS",
		"Team.TORONTO_RAPTORS":        "TOR",
		"Team.UTAH_JAZZ":              "UTA",
		"Team.WASHINGTON_WIZARDS":     "WAS",

		// Historical names and relocations seen in older archives.
		"Team.SEATTLE_SUPERSONICS":               "SEA",
		"Team.NEW_JERSEY_NETS":                   "BKN",
		"Team.CHARLOTTE_BOBCATS":                 "CHA",
		"Team.NEW_ORLEANS_HORNETS":               "NOP",
		"Team.NEW_ORLEANS_OKLAHOMA_CITY_HORNETS": "NOP",
		"Team.VANCOUVER_GRIZZLIES":               "MEM",
		"Team.WASHINGTON_BULLETS":                "WAS",
		"Team.SAN_DIEGO_CLIPPERS":                "LAC",
		"Team.KANSAS_CITY_KINGS":                 "SAC",
		"Team.LA_CLIPPERS":                       "LAC",
	}
}
