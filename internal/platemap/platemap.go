package platemap

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
)

// stderr is for logging to Stderr (without an annoying timestamp)
var stderr = log.New(os.Stderr, "", 0)

// Entry is the experimental metadata of one well.
type Entry struct {
	// pair number within the assay design ("1".."13")
	Pair string

	// growth condition, e.g. "YPD", "SALT", "GAL"
	Condition string

	// replicate number as written in the plate map
	Replicate string

	// sampling timepoint
	Timepoint int

	// whether the well came from a 12-well (C_ format) plate
	TwelveWell bool
}

// Map keys wells as "P<plate>_<unpadded well>", e.g. "P2_E8", matching the
// sample columns of the counts matrix.
type Map map[string]Entry

// Load reads a plate map from a CSV or XLSX file. The expected columns are
// PLATE, WELL and a condition string in the third column. Rows whose
// condition string doesn't parse are skipped with a warning.
func Load(path string) (Map, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("plate map %s has no data rows", path)
	}

	header := rows[0]
	plateCol, wellCol := -1, -1
	for i, h := range header {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case "PLATE":
			plateCol = i
		case "WELL":
			wellCol = i
		}
	}
	if plateCol < 0 || wellCol < 0 || len(header) < 3 {
		return nil, fmt.Errorf("plate map %s must have PLATE, WELL and a condition column", path)
	}

	pm := Map{}
	for i, row := range rows[1:] {
		if len(row) < 3 || plateCol >= len(row) || wellCol >= len(row) {
			continue
		}

		plate := strings.TrimSpace(row[plateCol])
		well := strings.TrimSpace(row[wellCol])
		cond := strings.TrimSpace(row[2])
		if plate == "" || well == "" || cond == "" {
			continue
		}

		entry, ok := parseCondition(cond)
		if !ok {
			stderr.Printf("warning: plate map row %d: cannot parse condition %q, skipping", i+2, cond)
			continue
		}

		pm[fmt.Sprintf("P%s_%s", plate, UnpadWell(well))] = entry
	}

	return pm, nil
}

// parseCondition decodes the underscore-separated condition strings used in
// the assay plate maps:
//
//	P_<pair>_<cond>_<rep>_<tp>   a competition well
//	C_<pair>_<cond>_<rep>_<tp>   a 12-well plate well (control format)
//	<x>_SALT_P<pair>_<rep>       perturbation wells; timepoint is 1
//	<x>_GAL_P<pair>_<rep>
func parseCondition(cond string) (Entry, bool) {
	parts := strings.Split(cond, "_")

	if len(parts) > 2 && (parts[1] == "SALT" || parts[1] == "GAL") {
		e := Entry{
			Pair:      strings.TrimPrefix(parts[2], "P"),
			Condition: parts[1],
			Replicate: "1",
			Timepoint: 1,
		}
		if len(parts) > 3 {
			e.Replicate = parts[3]
		}
		return e, true
	}

	if len(parts) >= 5 && (parts[0] == "P" || parts[0] == "C") {
		tp, err := strconv.Atoi(parts[4])
		if err != nil {
			return Entry{}, false
		}
		return Entry{
			Pair:       parts[1],
			Condition:  parts[2],
			Replicate:  parts[3],
			Timepoint:  tp,
			TwelveWell: parts[0] == "C",
		}, true
	}

	return Entry{}, false
}

// readRows loads the cell grid of a CSV or (first sheet of an) XLSX file.
func readRows(path string) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		xl, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %v", path, err)
		}
		sheet := xl.GetSheetName(xl.GetActiveSheetIndex())
		rows, err := xl.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s of %s: %v", sheet, path, err)
		}
		return rows, nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1 // plate maps often carry ragged comment columns
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return rows, nil
}
