package demux

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
)

func Test_Run(t *testing.T) {
	dir := t.TempDir()
	fastqDir := filepath.Join(dir, "fastq")
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(fastqDir, 0755); err != nil {
		t.Fatal(err)
	}

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	multiBC := write("indexes.fa", ">F01\nAAAA\n>F02\nCCCC\n>R01\nTTTT\n>R02\nGGGG\n")
	sample := write("samples.csv", "Sample,FwdIndex,RevIndex\nCoexP1_A1,F01,R01\nCoexP1_A2,F02,R02\n")

	// read 1 -> A01, read 2 -> A02, read 3 matches nothing
	write(filepath.Join("fastq", "pool_R1.fastq"),
		"@r1\nAAAAACGTACGT\n+\nIIIIIIIIIIII\n"+
			"@r2\nCCCCTGCATGCA\n+\nIIIIIIIIIIII\n"+
			"@r3\nGTGTGTGTGTGT\n+\nIIIIIIIIIIII\n")
	write(filepath.Join("fastq", "pool_R2.fastq"),
		"@r1\nTTTTGGGGCCCC\n+\nIIIIIIIIIIII\n"+
			"@r2\nGGGGAATTAATT\n+\nIIIIIIIIIIII\n"+
			"@r3\nACACACACACAC\n+\nIIIIIIIIIIII\n")

	stats, err := Run(context.Background(), Options{
		FastqDir:    fastqDir,
		OutDir:      outDir,
		MultiBCPath: multiBC,
		SamplePath:  sample,
		PairedEnd:   true,
		Mismatches:  1,
	})
	if err != nil {
		t.Fatal(err)
	}

	wantReads := map[string]int{"CoexP1_A01": 1, "CoexP1_A02": 1, Undetermined: 1}
	if !reflect.DeepEqual(stats.Reads, wantReads) {
		t.Errorf("stats.Reads = %v, want %v", stats.Reads, wantReads)
	}
	if stats.Total != 3 {
		t.Errorf("stats.Total = %d, want 3", stats.Total)
	}

	// the matched index is trimmed off
	var a01 []seqio.Record
	err = seqio.ForEachRead(context.Background(), filepath.Join(outDir, "CoexP1_A01_R1.fastq.gz"), func(r seqio.Record) error {
		a01 = append(a01, r)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(a01) != 1 || string(a01[0].Seq) != "ACGTACGT" {
		t.Errorf("A01 R1 reads = %v, want one read ACGTACGT", a01)
	}

	// undetermined reads stay untrimmed
	var und []seqio.Record
	err = seqio.ForEachRead(context.Background(), filepath.Join(outDir, "undetermined_R1.fastq.gz"), func(r seqio.Record) error {
		und = append(und, r)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(und) != 1 || string(und[0].Seq) != "GTGTGTGTGTGT" {
		t.Errorf("undetermined reads = %v, want one untrimmed read", und)
	}

	if _, err := os.Stat(filepath.Join(outDir, "demux_stats.tsv")); err != nil {
		t.Errorf("demux_stats.tsv was not written: %v", err)
	}
}

func Test_Stats_Samples(t *testing.T) {
	tests := []struct {
		name  string
		reads map[string]int
		want  int
	}{
		{
			"with undetermined",
			map[string]int{"CoexP1_A01": 3, "CoexP1_A02": 1, Undetermined: 2},
			2,
		},
		{
			"every read matched",
			map[string]int{"CoexP1_A01": 3, "CoexP1_A02": 1},
			2,
		},
		{
			"no reads at all",
			map[string]int{},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stats{Reads: tt.reads}
			if got := s.Samples(); got != tt.want {
				t.Errorf("Samples() = %d, want %d", got, tt.want)
			}
		})
	}
}

func Test_Run_missingMate(t *testing.T) {
	dir := t.TempDir()
	fastqDir := filepath.Join(dir, "fastq")
	if err := os.MkdirAll(fastqDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fastqDir, "pool_R1.fastq"), []byte("@r1\nAAAA\n+\nIIII\n"), 0644); err != nil {
		t.Fatal(err)
	}
	multiBC := filepath.Join(dir, "indexes.fa")
	if err := os.WriteFile(multiBC, []byte(">F01\nAAAA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sample := filepath.Join(dir, "samples.csv")
	if err := os.WriteFile(sample, []byte("Sample,FwdIndex,RevIndex\nCoexP1_A1,F01,F01\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), Options{
		FastqDir:    fastqDir,
		OutDir:      filepath.Join(dir, "out"),
		MultiBCPath: multiBC,
		SamplePath:  sample,
		PairedEnd:   true,
		Mismatches:  1,
	})
	if err == nil {
		t.Fatal("Run() expected an error for a missing R2 mate")
	}
}
