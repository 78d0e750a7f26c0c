package assay

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/platemap"
)

func writeCounts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "barcode_counts.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func Test_ReadCounts(t *testing.T) {
	path := writeCounts(t, "BCID,CoexP1_A01,CoexP1_B01\nP3B3,10,0\nP3H1,5,7\n")

	c, err := ReadCounts(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.BCIDs, []string{"P3B3", "P3H1"}) {
		t.Errorf("BCIDs = %v", c.BCIDs)
	}
	if !reflect.DeepEqual(c.Samples, []string{"CoexP1_A01", "CoexP1_B01"}) {
		t.Errorf("Samples = %v", c.Samples)
	}
	if got := c.counts["CoexP1_B01"]["P3H1"]; got != 7 {
		t.Errorf("counts[CoexP1_B01][P3H1] = %d, want 7", got)
	}
}

func Test_ReadCounts_errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no samples", "BCID\nP3B3\n"},
		{"no rows", "BCID,CoexP1_A01\n"},
		{"bad count", "BCID,CoexP1_A01\nP3B3,lots\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCounts(writeCounts(t, tt.content)); err == nil {
				t.Error("ReadCounts() expected an error")
			}
		})
	}
}

func Test_Join(t *testing.T) {
	path := writeCounts(t,
		"BCID,CoexP1_A01,CoexP1_B01,CoexP1_C01,undetermined\n"+
			"P3B3,10,3,2,100\n"+
			"P3H1,5,0,4,100\n")
	c, err := ReadCounts(path)
	if err != nil {
		t.Fatal(err)
	}

	pm := platemap.Map{
		"P1_A1": {Pair: "1", Condition: "YPD", Replicate: "A", Timepoint: 1},
		"P1_C1": {Pair: "2", Condition: "SALT", Replicate: "B", Timepoint: 3, TwelveWell: true},
		// B1 deliberately absent: unmapped wells are skipped
	}

	got := Join(c, pm, false)
	want := []Record{
		{Barcode: "P3B3", Count: 10, Pair: "1", Condition: "YPD", Replicate: "A", Timepoint: 1},
		{Barcode: "P3H1", Count: 5, Pair: "1", Condition: "YPD", Replicate: "A", Timepoint: 1},
		{Barcode: "P3B3", Count: 2, Pair: "2", Condition: "SALT", Replicate: "B", Timepoint: 3},
		{Barcode: "P3H1", Count: 4, Pair: "2", Condition: "SALT", Replicate: "B", Timepoint: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Join() = %v, want %v", got, want)
	}

	// twelve-well keeps only the C_-format entries
	got = Join(c, pm, true)
	want = want[2:]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Join(twelveWell) = %v, want %v", got, want)
	}
}

func Test_WriteRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "competition_data.csv")
	records := []Record{
		{Barcode: "P3B3", Count: 10, Pair: "1", Condition: "YPD", Replicate: "A", Timepoint: 2},
	}
	if err := WriteRecords(path, records); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "barcode,frequency,pair,condition,timepoint,replicate\nP3B3,10,1,YPD,2,A\n"
	if string(out) != want {
		t.Errorf("WriteRecords() wrote %q, want %q", out, want)
	}
}

func Test_Summarize(t *testing.T) {
	records := []Record{
		{Barcode: "P3B3", Count: 1, Pair: "10", Condition: "YPD", Replicate: "A", Timepoint: 1},
		{Barcode: "P3H1", Count: 1, Pair: "2", Condition: "YPD", Replicate: "A", Timepoint: 1},
		{Barcode: "P3H1", Count: 1, Pair: "2", Condition: "SALT", Replicate: "B", Timepoint: 3},
	}

	got := Summarize(records)
	want := []Summary{
		{
			Pair:       "2",
			Conditions: []string{"SALT", "YPD"},
			Timepoints: []int{1, 3},
			Replicates: []string{"A", "B"},
			Barcodes:   []string{"P3H1"},
			Records:    2,
		},
		{
			Pair:       "10",
			Conditions: []string{"YPD"},
			Timepoints: []int{1},
			Replicates: []string{"A"},
			Barcodes:   []string{"P3B3"},
			Records:    1,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}
