package player

import "fmt"

// Player is an authoritative roster entry. FullName is the matching target;
// the remaining fields ride along as reference metadata.
type Player struct {
	ID        string `json:"player_id"`
	FullName  string `json:"full_name"`
	Nicknames string `json:"nicknames,omitempty"`
	Position  string `json:"position,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.FullName == "" {
		return fmt.Errorf("player full name is required")
	}

	return nil
}

// DocID keys the player document by its canonical id.
func (p Player) DocID() string {
	return p.ID
}
