package season

import (
	"fmt"
	"strconv"
)

// Season is an authoritative season record, keyed by its integer id.
type Season struct {
	ID        int64  `json:"season_id"`
	Label     string `json:"season_label"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

func (s Season) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("season id must be greater than zero")
	}
	if s.Label == "" {
		return fmt.Errorf("season label is required")
	}
	if s.EndYear < s.StartYear {
		return fmt.Errorf("season end year %d precedes start year %d", s.EndYear, s.StartYear)
	}

	return nil
}

// DocID is the deterministic document key, making re-import idempotent.
func (s Season) DocID() string {
	return strconv.FormatInt(s.ID, 10)
}
