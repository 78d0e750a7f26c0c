// Package assay joins barcode counts with the plate map and derives the
// competition tables of the coexistence assay.
package assay

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/platemap"
)

// stderr is for logging to Stderr (without an annoying timestamp)
var stderr = log.New(os.Stderr, "", 0)

// Record is one (barcode, sample) observation in long format.
type Record struct {
	Barcode   string
	Count     int
	Pair      string
	Condition string
	Replicate string
	Timepoint int
}

// Counts is a parsed barcode counts matrix: BCID rows, sample columns.
type Counts struct {
	BCIDs   []string
	Samples []string

	// sample -> BCID -> reads
	counts map[string]map[string]int
}

// ReadCounts parses a barcode_counts.csv file (first column BCID, one
// column per CoexP<plate>_<well> sample).
func ReadCounts(path string) (*Counts, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("counts file %s has no samples", path)
	}

	c := &Counts{
		Samples: rows[0][1:],
		counts:  map[string]map[string]int{},
	}
	for _, sample := range c.Samples {
		c.counts[sample] = map[string]int{}
	}

	for i, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			return nil, fmt.Errorf("counts file %s row %d has %d fields, want %d", path, i+2, len(row), len(rows[0]))
		}
		bcid := row[0]
		c.BCIDs = append(c.BCIDs, bcid)
		for j, cell := range row[1:] {
			n, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("counts file %s row %d: bad count %q", path, i+2, cell)
			}
			c.counts[c.Samples[j]][bcid] = n
		}
	}
	return c, nil
}

// Join looks every sample column up in the plate map and flattens nonzero
// counts into long-format records. Sample columns that don't parse are
// skipped; wells missing from the plate map are skipped with a warning.
// With twelveWell only C_-format plate map entries are kept.
func Join(counts *Counts, pm platemap.Map, twelveWell bool) []Record {
	var records []Record
	for _, sample := range counts.Samples {
		plate, well, err := platemap.ParseSampleName(sample)
		if err != nil {
			continue
		}

		key := fmt.Sprintf("P%d_%s", plate, well)
		entry, ok := pm[key]
		if !ok {
			stderr.Printf("warning: %s not found in plate map", key)
			continue
		}
		if twelveWell && !entry.TwelveWell {
			continue
		}

		for _, bcid := range counts.BCIDs {
			n := counts.counts[sample][bcid]
			if n <= 0 {
				continue
			}
			records = append(records, Record{
				Barcode:   bcid,
				Count:     n,
				Pair:      entry.Pair,
				Condition: entry.Condition,
				Replicate: entry.Replicate,
				Timepoint: entry.Timepoint,
			})
		}
	}
	return records
}

// WriteRecords exports the long-format table. The column order matches the
// downstream analysis sheets.
func WriteRecords(path string, records []Record) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	if err := w.Write([]string{"barcode", "frequency", "pair", "condition", "timepoint", "replicate"}); err != nil {
		return err
	}
	for _, r := range records {
		err := w.Write([]string{
			r.Barcode,
			strconv.Itoa(r.Count),
			r.Pair,
			r.Condition,
			strconv.Itoa(r.Timepoint),
			r.Replicate,
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Summary describes what was observed for one pair.
type Summary struct {
	Pair       string
	Conditions []string
	Timepoints []int
	Replicates []string
	Barcodes   []string
	Records    int
}

// Summarize aggregates records per pair, sorted by pair number.
func Summarize(records []Record) []Summary {
	type sets struct {
		conds, reps, bcs map[string]bool
		tps              map[int]bool
		n                int
	}
	byPair := map[string]*sets{}
	for _, r := range records {
		s, ok := byPair[r.Pair]
		if !ok {
			s = &sets{
				conds: map[string]bool{}, reps: map[string]bool{},
				bcs: map[string]bool{}, tps: map[int]bool{},
			}
			byPair[r.Pair] = s
		}
		s.conds[r.Condition] = true
		s.reps[r.Replicate] = true
		s.bcs[r.Barcode] = true
		s.tps[r.Timepoint] = true
		s.n++
	}

	var out []Summary
	for pair, s := range byPair {
		sum := Summary{Pair: pair, Records: s.n}
		for c := range s.conds {
			sum.Conditions = append(sum.Conditions, c)
		}
		for r := range s.reps {
			sum.Replicates = append(sum.Replicates, r)
		}
		for b := range s.bcs {
			sum.Barcodes = append(sum.Barcodes, b)
		}
		for t := range s.tps {
			sum.Timepoints = append(sum.Timepoints, t)
		}
		sort.Strings(sum.Conditions)
		sort.Strings(sum.Replicates)
		sort.Strings(sum.Barcodes)
		sort.Ints(sum.Timepoints)
		out = append(out, sum)
	}

	sort.Slice(out, func(i, j int) bool {
		ni, erri := strconv.Atoi(out[i].Pair)
		nj, errj := strconv.Atoi(out[j].Pair)
		if erri == nil && errj == nil {
			return ni < nj
		}
		return out[i].Pair < out[j].Pair
	})
	return out
}
