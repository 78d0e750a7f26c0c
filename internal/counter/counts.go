package counter

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/platemap"
)

// Matrix is the barcode-by-sample counts table written to
// barcode_counts.csv.
type Matrix struct {
	// row order: the barcode list's FASTA order
	BCIDs []string

	// column order: plate then padded well
	Samples []string

	// sample -> BCID -> reads
	Counts map[string]map[string]int
}

// NewMatrix sets up an empty matrix with the given row order. Samples are
// added as they finish counting.
func NewMatrix(bcids []string) *Matrix {
	return &Matrix{BCIDs: bcids, Counts: map[string]map[string]int{}}
}

// AddSample records one sample's tallies.
func (m *Matrix) AddSample(sample string, counts map[string]int) {
	m.Samples = append(m.Samples, sample)
	m.Counts[sample] = counts
}

// sortSamples orders columns by plate then padded well.
func (m *Matrix) sortSamples() {
	sort.Slice(m.Samples, func(i, j int) bool {
		return sampleLess(m.Samples[i], m.Samples[j])
	})
}

// sampleLess orders sample names by plate then padded well; names that
// don't parse sort after the wells, alphabetically.
func sampleLess(a, b string) bool {
	pa, wa, errA := platemap.ParseSampleName(a)
	pb, wb, errB := platemap.ParseSampleName(b)
	if (errA == nil) != (errB == nil) {
		return errA == nil
	}
	if errA != nil {
		return a < b
	}
	if pa != pb {
		return pa < pb
	}
	return platemap.PadWell(wa) < platemap.PadWell(wb)
}

// WriteCSV writes the matrix with a BCID first column and one column per
// sample.
func (m *Matrix) WriteCSV(path string) error {
	m.sortSamples()

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	header := append([]string{"BCID"}, m.Samples...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, bcid := range m.BCIDs {
		row[0] = bcid
		for i, sample := range m.Samples {
			row[i+1] = strconv.Itoa(m.Counts[sample][bcid])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// SampleStats tracks how far one sample's reads made it through counting.
type SampleStats struct {
	Sample string

	// reads seen
	Total int

	// reads where the template flank was located
	Matched int

	// reads whose barcode hit a list entry
	Assigned int
}

// WriteStats writes per-sample counting statistics as a TSV, in matrix
// column order.
func WriteStats(path string, stats []SampleStats) error {
	sort.Slice(stats, func(i, j int) bool { return sampleLess(stats[i].Sample, stats[j].Sample) })

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	fmt.Fprintln(fh, "sample\treads\ttemplate_matched\tassigned\tassigned_fraction")
	for _, s := range stats {
		frac := 0.0
		if s.Total > 0 {
			frac = float64(s.Assigned) / float64(s.Total)
		}
		fmt.Fprintf(fh, "%s\t%d\t%d\t%d\t%.4f\n", s.Sample, s.Total, s.Matched, s.Assigned, frac)
	}
	return nil
}

// writeCache saves a sample's extracted barcode sequences so --remap can
// re-assign them without touching the reads again.
func writeCache(path string, raw [][]byte) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	gw := gzip.NewWriter(fh)
	bw := bufio.NewWriter(gw)
	for _, bc := range raw {
		bw.Write(bc)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return gw.Close()
}

// readCache loads a sample's cached barcode sequences.
func readCache(path string) ([][]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	gr, err := gzip.NewReader(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to open barcode cache %s: %v", path, err)
	}
	defer gr.Close()

	var raw [][]byte
	sc := bufio.NewScanner(gr)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		raw = append(raw, append([]byte(nil), sc.Bytes()...))
	}
	return raw, sc.Err()
}
