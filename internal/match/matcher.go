package match

import (
	"sort"

	"github.com/courtline/recordlink/internal/domain/player"
)

// Candidate is one roster entry scored against a target name. Index is the
// candidate's position in the roster the Matcher was built with.
type Candidate struct {
	Index  int
	Player player.Player
	Score  float64
}

// Matcher scores free-text names against a fixed roster snapshot. Candidate
// names are normalized once at construction; the roster is read-only after
// that, so a Matcher is safe for concurrent use.
type Matcher struct {
	roster     []player.Player
	normalized []string
}

func NewMatcher(roster []player.Player) *Matcher {
	normalized := make([]string, len(roster))
	for i, p := range roster {
		normalized[i] = Normalize(p.FullName)
	}

	return &Matcher{
		roster:     append([]player.Player(nil), roster...),
		normalized: normalized,
	}
}

// FindBest returns the highest-scoring candidate at or above threshold, or
// false if none reaches it. An exact normalized match short-circuits at 1.0
// regardless of threshold; ties between exact matches go to the first roster
// occurrence. Among fuzzy candidates only a strictly greater score replaces
// the running best, so equal-score ties also keep the earlier entry.
func (m *Matcher) FindBest(name string, threshold float64) (Candidate, bool) {
	target := Normalize(name)

	best := Candidate{Index: -1}
	found := false
	for i := range m.roster {
		if m.normalized[i] == target {
			return Candidate{Index: i, Player: m.roster[i], Score: 1.0}, true
		}

		score := Similarity(target, m.normalized[i])
		if score >= threshold && score > best.Score {
			best = Candidate{Index: i, Player: m.roster[i], Score: score}
			found = true
		}
	}

	return best, found
}

// FindAll returns every candidate at or above threshold, sorted by
// descending score. Ties keep roster order (stable sort). A non-positive
// maxResults means no truncation.
func (m *Matcher) FindAll(name string, threshold float64, maxResults int) []Candidate {
	target := Normalize(name)

	var out []Candidate
	for i := range m.roster {
		score := Similarity(target, m.normalized[i])
		if m.normalized[i] == target {
			score = 1.0
		}
		if score >= threshold {
			out = append(out, Candidate{Index: i, Player: m.roster[i], Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}

	return out
}
