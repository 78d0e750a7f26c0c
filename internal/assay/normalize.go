package assay

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Frequency is the normalized share of one strain of a two-strain system
// at one (condition, replicate, timepoint).
type Frequency struct {
	Barcode   string
	Condition string
	Replicate string
	Timepoint int

	// this strain's reads over the pair's combined reads, 0..1
	Frequency float64
}

// Normalize reduces one pair's records to the two expected strains and
// normalizes them against each other: fA = A/(A+B), fB = B/(A+B), per
// (condition, replicate, timepoint). Signal from any other barcode in the
// well is ignored; groups where neither strain was seen are dropped.
func Normalize(records []Record, pair string, strainA, strainB string) []Frequency {
	type groupKey struct {
		cond, rep string
		tp        int
	}
	type tally struct{ a, b int }

	groups := map[groupKey]*tally{}
	for _, r := range records {
		if r.Pair != pair {
			continue
		}
		key := groupKey{r.Condition, r.Replicate, r.Timepoint}
		t, ok := groups[key]
		if !ok {
			t = &tally{}
			groups[key] = t
		}
		switch r.Barcode {
		case strainA:
			t.a += r.Count
		case strainB:
			t.b += r.Count
		}
	}

	var out []Frequency
	for key, t := range groups {
		total := t.a + t.b
		if total == 0 {
			continue
		}
		out = append(out,
			Frequency{strainA, key.cond, key.rep, key.tp, float64(t.a) / float64(total)},
			Frequency{strainB, key.cond, key.rep, key.tp, float64(t.b) / float64(total)},
		)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Condition != out[j].Condition {
			return out[i].Condition < out[j].Condition
		}
		if out[i].Replicate != out[j].Replicate {
			return out[i].Replicate < out[j].Replicate
		}
		if out[i].Timepoint != out[j].Timepoint {
			return out[i].Timepoint < out[j].Timepoint
		}
		return out[i].Barcode < out[j].Barcode
	})
	return out
}

// WriteFrequencies exports a pair's normalized frequencies.
func WriteFrequencies(path string, freqs []Frequency) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	if err := w.Write([]string{"barcode", "condition", "replicate", "timepoint", "frequency"}); err != nil {
		return err
	}
	for _, f := range freqs {
		err := w.Write([]string{
			f.Barcode,
			f.Condition,
			f.Replicate,
			strconv.Itoa(f.Timepoint),
			fmt.Sprintf("%.6f", f.Frequency),
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
