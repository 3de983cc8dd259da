package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/courtline/recordlink/internal/domain/performance"
)

// WriteUnmatched writes the unmatched-for-review file. The reason column
// carries the resolution failure, replacing whatever reason the scrape
// source supplied.
func WriteUnmatched(path string, items []performance.Unmatched) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(performanceColumns)
	for _, item := range items {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{
			item.Record.PlayerName,
			item.Record.TeamCode,
			item.Record.SeasonYear,
			item.Record.SeasonID,
			item.Record.GamesPlayed,
			item.Reason(),
		})
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}

	if err := f.Close(); writeErr == nil && err != nil {
		writeErr = err
	}
	if writeErr != nil {
		return fmt.Errorf("write %s: %w", path, writeErr)
	}

	return nil
}
