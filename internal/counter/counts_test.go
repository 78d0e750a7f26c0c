package counter

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_sampleLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		// plates compare numerically, not as strings
		{"CoexP2_A01", "CoexP10_A01", true},
		{"CoexP10_A01", "CoexP2_A01", false},
		// wells compare padded
		{"CoexP1_A02", "CoexP1_A10", true},
		// names that don't parse sort after the wells
		{"CoexP1_H12", "undetermined", true},
		{"aaa", "bbb", true},
	}
	for _, tt := range tests {
		if got := sampleLess(tt.a, tt.b); got != tt.want {
			t.Errorf("sampleLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func Test_WriteStats_order(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count_stats.tsv")
	stats := []SampleStats{
		{Sample: "CoexP10_A01", Total: 1},
		{Sample: "CoexP2_B01", Total: 2, Matched: 1, Assigned: 1},
		{Sample: "CoexP2_A01", Total: 4, Matched: 4, Assigned: 2},
	}
	if err := WriteStats(path, stats); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "sample\treads\ttemplate_matched\tassigned\tassigned_fraction\n" +
		"CoexP2_A01\t4\t4\t2\t0.5000\n" +
		"CoexP2_B01\t2\t1\t1\t0.5000\n" +
		"CoexP10_A01\t1\t0\t0\t0.0000\n"
	if string(out) != want {
		t.Errorf("WriteStats() wrote %q, want %q", out, want)
	}
}
