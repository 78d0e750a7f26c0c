package seqio

import "testing"

func Test_RevComp(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"simple", "ACGT", "ACGT"},
		{"asymmetric", "AACCG", "CGGTT"},
		{"with N", "ACNGT", "ACNGT"},
		{"unknown base becomes N", "ACXGT", "ACNGT"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(RevComp([]byte(tt.seq))); got != tt.want {
				t.Errorf("RevComp(%q) = %q, want %q", tt.seq, got, tt.want)
			}
		})
	}
}

func Test_Hamming(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "ACGT", "ACGT", 0},
		{"one mismatch", "ACGT", "ACGA", 1},
		{"all mismatch", "AAAA", "TTTT", 4},
		{"length mismatch", "ACGT", "ACG", -1},
		{"empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hamming([]byte(tt.a), []byte(tt.b)); got != tt.want {
				t.Errorf("Hamming(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
