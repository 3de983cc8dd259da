package team

import (
	"fmt"
	"strconv"
)

// Team is an authoritative franchise record. Abbreviation is unique across
// the reference set and is the key external records resolve against.
type Team struct {
	ID           int64  `json:"team_id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Location     string `json:"location"`
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be greater than zero")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Abbreviation == "" {
		return fmt.Errorf("team abbreviation is required")
	}

	return nil
}

// DocID is the deterministic document key, making re-import idempotent.
func (t Team) DocID() string {
	return strconv.FormatInt(t.ID, 10)
}
