package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/courtline/recordlink/internal/domain/performance"
	"github.com/courtline/recordlink/internal/domain/player"
	"github.com/courtline/recordlink/internal/domain/season"
	"github.com/courtline/recordlink/internal/domain/team"
)

// Column sets for the four input schemas. A header row is required; column
// order is free.
var (
	teamColumns        = []string{"team_id", "team_name", "abbreviation", "location"}
	seasonColumns      = []string{"season_id", "season_label", "start_year", "end_year"}
	playerColumns      = []string{"player_id", "full_name", "nicknames", "position", "birth_date"}
	performanceColumns = []string{"player_name", "team_abbr", "season_year", "season_id", "games_played", "reason"}
)

func ReadTeams(path string) ([]team.Team, error) {
	var out []team.Team
	err := readRows(path, teamColumns, func(line int, field func(string) string) error {
		id, err := strconv.ParseInt(strings.TrimSpace(field("team_id")), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid team_id %q: %w", line, field("team_id"), err)
		}
		out = append(out, team.Team{
			ID:           id,
			Name:         strings.TrimSpace(field("team_name")),
			Abbreviation: strings.TrimSpace(field("abbreviation")),
			Location:     strings.TrimSpace(field("location")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func ReadSeasons(path string) ([]season.Season, error) {
	var out []season.Season
	err := readRows(path, seasonColumns, func(line int, field func(string) string) error {
		id, err := strconv.ParseInt(strings.TrimSpace(field("season_id")), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid season_id %q: %w", line, field("season_id"), err)
		}
		startYear, err := strconv.Atoi(strings.TrimSpace(field("start_year")))
		if err != nil {
			return fmt.Errorf("line %d: invalid start_year %q: %w", line, field("start_year"), err)
		}
		endYear, err := strconv.Atoi(strings.TrimSpace(field("end_year")))
		if err != nil {
			return fmt.Errorf("line %d: invalid end_year %q: %w", line, field("end_year"), err)
		}
		out = append(out, season.Season{
			ID:        id,
			Label:     strings.TrimSpace(field("season_label")),
			StartYear: startYear,
			EndYear:   endYear,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func ReadPlayers(path string) ([]player.Player, error) {
	var out []player.Player
	err := readRows(path, playerColumns, func(line int, field func(string) string) error {
		out = append(out, player.Player{
			ID:        strings.TrimSpace(field("player_id")),
			FullName:  strings.TrimSpace(field("full_name")),
			Nicknames: strings.TrimSpace(field("nicknames")),
			Position:  strings.TrimSpace(field("position")),
			BirthDate: strings.TrimSpace(field("birth_date")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ReadPerformances keeps every field as raw text; numeric parsing and its
// fallbacks happen at linkage time.
func ReadPerformances(path string) ([]performance.RawRecord, error) {
	var out []performance.RawRecord
	err := readRows(path, performanceColumns, func(line int, field func(string) string) error {
		out = append(out, performance.RawRecord{
			PlayerName:  field("player_name"),
			TeamCode:    field("team_abbr"),
			SeasonYear:  field("season_year"),
			SeasonID:    field("season_id"),
			GamesPlayed: field("games_played"),
			Reason:      field("reason"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// readRows streams a CSV file through row, giving it name-based field
// access. The first row must be a header containing every required column.
func readRows(path string, required []string, row func(line int, field func(string) string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}
	index, err := headerIndex(header, required)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		line++

		field := func(name string) string {
			idx, ok := index[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}
		if err := row(line, field); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}

func headerIndex(header []string, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return index, nil
}
