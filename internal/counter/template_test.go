package counter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, fasta string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.fa")
	if err := os.WriteFile(path, []byte(fasta), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func Test_ParseTemplate(t *testing.T) {
	tmpl, err := ParseTemplate(writeTemplate(t, ">amplicon\nACGTACGTNNNNNNTTGGCCAA\n"))
	if err != nil {
		t.Fatal(err)
	}

	if string(tmpl.Upstream) != "ACGTACGT" {
		t.Errorf("Upstream = %s, want ACGTACGT", tmpl.Upstream)
	}
	if string(tmpl.Downstream) != "TTGGCCAA" {
		t.Errorf("Downstream = %s, want TTGGCCAA", tmpl.Downstream)
	}
	if tmpl.BarcodeLen != 6 {
		t.Errorf("BarcodeLen = %d, want 6", tmpl.BarcodeLen)
	}
}

func Test_ParseTemplate_longestRun(t *testing.T) {
	// a stray single N upstream must not win over the real locus
	tmpl, err := ParseTemplate(writeTemplate(t, ">amplicon\nACNGTACGTACGTNNNNNNTTGGCCAA\n"))
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.BarcodeLen != 6 {
		t.Errorf("BarcodeLen = %d, want 6", tmpl.BarcodeLen)
	}
	if !strings.HasSuffix(string(tmpl.Upstream), "GTACGTACGT") {
		t.Errorf("Upstream = %s, want the bases before the 6-N run", tmpl.Upstream)
	}
}

func Test_ParseTemplate_errors(t *testing.T) {
	tests := []struct {
		name  string
		fasta string
	}{
		{"no N run", ">amplicon\nACGTACGTACGT\n"},
		{"locus at 5' end", ">amplicon\nNNNNNNACGTACGT\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTemplate(writeTemplate(t, tt.fasta)); err == nil {
				t.Fatal("ParseTemplate() expected an error")
			}
		})
	}
}

func Test_findFlank(t *testing.T) {
	tests := []struct {
		name  string
		seq   string
		flank string
		maxMM int
		want  int
	}{
		{"exact", "TTACGTACGTTT", "ACGTACGT", 0, 2},
		{"one mismatch", "TTACGAACGTTT", "ACGTACGT", 2, 2},
		{"best position wins", "ACGAACGTACGTACGT", "ACGTACGT", 2, 4},
		{"not found", "TTTTTTTTTTTT", "ACGTACGT", 2, -1},
		{"seq shorter than flank", "ACG", "ACGTACGT", 2, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findFlank([]byte(tt.seq), []byte(tt.flank), tt.maxMM); got != tt.want {
				t.Errorf("findFlank(%q, %q, %d) = %d, want %d", tt.seq, tt.flank, tt.maxMM, got, tt.want)
			}
		})
	}
}

func Test_Extract(t *testing.T) {
	tmpl := Template{
		Upstream:   []byte("ACGTACGT"),
		Downstream: []byte("TTGGCCAA"),
		BarcodeLen: 6,
	}

	tests := []struct {
		name   string
		read   string
		want   string
		wantOK bool
	}{
		{
			"forward strand",
			"GGACGTACGTAACCGGTTGGCCAA",
			"AACCGG", true,
		},
		{
			"reverse strand",
			"TTGGCCAACCGGTTACGTACGTCC", // revcomp of GGACGTACGTAACCGGTTGGCCAA
			"AACCGG", true,
		},
		{
			"read ends inside the locus",
			"GGACGTACGTAACC",
			"", false,
		},
		{
			"read ends right after the locus",
			"GGACGTACGTAACCGG",
			"AACCGG", true,
		},
		{
			"downstream flank disagrees",
			"GGACGTACGTAACCGGAAAAAAAA",
			"", false,
		},
		{
			"no anchor",
			"GGGGGGGGGGGGGGGGGGGGGGGG",
			"", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tmpl.Extract([]byte(tt.read), 1)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.read, ok, tt.wantOK)
			}
			if string(got) != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.read, got, tt.want)
			}
		})
	}
}
