package platemap

import (
	"fmt"
	"strings"
)

// SheetRow maps one sample to its multiplexing index names.
type SheetRow struct {
	// canonical padded sample name, e.g. "CoexP1_A01"
	Sample string

	// names of records in the multiplexing index FASTA
	FwdIndex string
	RevIndex string
}

// LoadSampleSheet reads a sample sheet from a CSV or XLSX file with the
// columns Sample, FwdIndex, RevIndex. Sample names must parse as
// CoexP<plate>_<well> and are normalized to padded wells. RevIndex may be
// empty for single-end runs.
func LoadSampleSheet(path string) ([]SheetRow, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sample sheet %s has no data rows", path)
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	sampleCol, ok := cols["sample"]
	if !ok {
		return nil, fmt.Errorf("sample sheet %s has no Sample column", path)
	}
	fwdCol, ok := cols["fwdindex"]
	if !ok {
		return nil, fmt.Errorf("sample sheet %s has no FwdIndex column", path)
	}
	revCol, hasRev := cols["revindex"]

	var (
		sheet []SheetRow
		seen  = map[string]bool{}
	)
	for i, row := range rows[1:] {
		if sampleCol >= len(row) || strings.TrimSpace(row[sampleCol]) == "" {
			continue
		}

		name := strings.TrimSpace(row[sampleCol])
		plate, well, err := ParseSampleName(name)
		if err != nil {
			return nil, fmt.Errorf("sample sheet row %d: %v", i+2, err)
		}
		name = SampleName(plate, well)

		if seen[name] {
			return nil, fmt.Errorf("sample sheet row %d: duplicate sample %s", i+2, name)
		}
		seen[name] = true

		sr := SheetRow{Sample: name}
		if fwdCol < len(row) {
			sr.FwdIndex = strings.TrimSpace(row[fwdCol])
		}
		if sr.FwdIndex == "" {
			return nil, fmt.Errorf("sample sheet row %d: sample %s has no forward index", i+2, name)
		}
		if hasRev && revCol < len(row) {
			sr.RevIndex = strings.TrimSpace(row[revCol])
		}

		sheet = append(sheet, sr)
	}

	if len(sheet) == 0 {
		return nil, fmt.Errorf("sample sheet %s has no usable rows", path)
	}
	return sheet, nil
}
