// Package sheet imports and exports workout history through the fixed
// spreadsheet schema "Date, Exercise, Set1 Reps, Set1 Weight, ..., Volume".
// Parsing is best-effort: malformed rows are skipped and reported, never
// fatal, so one bad line cannot sink a whole import.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rishi1508/zenith/internal/workout"
)

// ParseResult carries the rows that parsed and the reasons for those that
// did not.
type ParseResult struct {
	Rows    []workout.ImportRow
	Skipped []string
}

// dateLayouts lists the date formats accepted in the Date column.
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseCSV reads spreadsheet rows from r. Comma and tab delimiters are both
// accepted. An input where not a single row parses is an error.
func ParseCSV(r io.Reader) (ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = sniffDelimiter(string(data))
	reader.FieldsPerRecord = -1 // rows may carry fewer set pairs than the header

	records, err := reader.ReadAll()
	if err != nil {
		return ParseResult{}, fmt.Errorf("read csv: %w", err)
	}

	return parseRecords(records)
}

// parseRecords turns raw cell rows (header first) into import rows. Shared
// by the CSV and published-HTML parsers.
func parseRecords(records [][]string) (ParseResult, error) {
	if len(records) == 0 {
		return ParseResult{}, fmt.Errorf("empty input")
	}

	if err := validateHeader(records[0]); err != nil {
		return ParseResult{}, err
	}

	var result ParseResult
	for i, record := range records[1:] {
		row, rowErr := parseRow(record)
		if rowErr != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: %v", i+2, rowErr))
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if len(result.Rows) == 0 {
		return ParseResult{}, fmt.Errorf("no parseable rows among %d", len(records)-1)
	}

	return result, nil
}

// sniffDelimiter picks tab when the first line holds more tabs than commas.
func sniffDelimiter(data string) rune {
	firstLine, _, _ := strings.Cut(data, "\n")
	if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
		return '\t'
	}
	return ','
}

func validateHeader(header []string) error {
	if len(header) < 2 {
		return fmt.Errorf("header has %d columns, want at least Date and Exercise", len(header))
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "Date") {
		return fmt.Errorf("first header column is %q, want Date", header[0])
	}
	if !strings.EqualFold(strings.TrimSpace(header[1]), "Exercise") {
		return fmt.Errorf("second header column is %q, want Exercise", header[1])
	}
	return nil
}

func parseRow(record []string) (workout.ImportRow, error) {
	if len(record) < 2 {
		return workout.ImportRow{}, fmt.Errorf("too few columns")
	}

	date, err := parseDate(strings.TrimSpace(record[0]))
	if err != nil {
		return workout.ImportRow{}, err
	}

	name := strings.TrimSpace(record[1])
	if name == "" {
		return workout.ImportRow{}, fmt.Errorf("empty exercise name")
	}

	row := workout.ImportRow{
		Date:         date,
		ExerciseName: name,
	}

	// Remaining columns come as "SetN Reps, SetN Weight" pairs, with the
	// trailing Volume column ignored; it is derived data.
	pairs := record[2:]
	if len(pairs)%2 == 1 {
		pairs = pairs[:len(pairs)-1]
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		repsStr := strings.TrimSpace(pairs[i])
		weightStr := strings.TrimSpace(pairs[i+1])
		if repsStr == "" && weightStr == "" {
			continue
		}

		reps, repsErr := strconv.Atoi(repsStr)
		if repsErr != nil || reps < 0 {
			return workout.ImportRow{}, fmt.Errorf("bad reps %q in set %d", repsStr, i/2+1)
		}
		weight, weightErr := strconv.ParseFloat(weightStr, 64)
		if weightErr != nil || weight < 0 {
			return workout.ImportRow{}, fmt.Errorf("bad weight %q in set %d", weightStr, i/2+1)
		}

		row.Sets = append(row.Sets, workout.Set{
			Weight: weight,
			Reps:   reps,
		})
	}

	if len(row.Sets) == 0 {
		return workout.ImportRow{}, fmt.Errorf("no sets")
	}

	return row, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// minExportPairs fixes the minimum number of set-pair columns so small
// exports still match the spreadsheet template.
const minExportPairs = 3

// completedSets filters the sets that were actually performed.
func completedSets(sets []workout.Set) []workout.Set {
	performed := make([]workout.Set, 0, len(sets))
	for _, s := range sets {
		if s.Completed {
			performed = append(performed, s)
		}
	}
	return performed
}

// WriteCSV exports completed workouts through the same schema that ParseCSV
// reads. One row per exercise entry; rest days carry no entries and are
// omitted. Only completed sets are exported, since import marks every parsed
// set as performed, and the Volume column is recomputed from them.
func WriteCSV(w io.Writer, workouts []workout.Workout) error {
	pairCount := minExportPairs
	for _, workoutEntry := range workouts {
		if !workoutEntry.Completed {
			continue
		}
		for _, entry := range workoutEntry.Exercises {
			if n := len(completedSets(entry.Sets)); n > pairCount {
				pairCount = n
			}
		}
	}

	writer := csv.NewWriter(w)

	header := []string{"Date", "Exercise"}
	for i := 1; i <= pairCount; i++ {
		header = append(header, fmt.Sprintf("Set%d Reps", i), fmt.Sprintf("Set%d Weight", i))
	}
	header = append(header, "Volume")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, workoutEntry := range workouts {
		if !workoutEntry.Completed {
			continue
		}
		for _, entry := range workoutEntry.Exercises {
			record := make([]string, 0, len(header))
			record = append(record, workoutEntry.Date.Format(time.DateOnly), entry.ExerciseName)

			sets := completedSets(entry.Sets)
			var volume float64
			for i := range pairCount {
				if i >= len(sets) {
					record = append(record, "", "")
					continue
				}
				set := sets[i]
				record = append(record,
					strconv.Itoa(set.Reps),
					strconv.FormatFloat(set.Weight, 'f', -1, 64))
				volume += set.Weight * float64(set.Reps)
			}

			record = append(record, strconv.FormatFloat(volume, 'f', -1, 64))
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
