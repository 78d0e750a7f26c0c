package bowtie

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func Test_parseSAM(t *testing.T) {
	sam := "@HD\tVN:1.0\tSO:unsorted\n" +
		"@SQ\tSN:P3B3\tLN:26\n" +
		"q0\t0\tP3B3\t1\t42\t26M\t*\t0\t0\tAAAAAA\tIIIIII\n" +
		// unmapped
		"q1\t4\t*\t0\t0\t*\t*\t0\t0\tCCCCCC\tIIIIII\n" +
		// secondary alignment
		"q2\t256\tP3H1\t1\t42\t26M\t*\t0\t0\tGGGGGG\tIIIIII\n" +
		// low mapping quality
		"q3\t0\tP3H1\t1\t3\t26M\t*\t0\t0\tTTTTTT\tIIIIII\n" +
		"q4\t0\tP3H1\t1\t30\t26M\t*\t0\t0\tACACAC\tIIIIII\n" +
		// query ID bowtie2 was never handed
		"q9\t0\tP3H1\t1\t42\t26M\t*\t0\t0\tGTGTGT\tIIIIII\n"

	path := filepath.Join(t.TempDir(), "out.sam")
	if err := os.WriteFile(path, []byte(sam), 0644); err != nil {
		t.Fatal(err)
	}

	unique := map[string]string{
		"q0": "AAAAAA",
		"q1": "CCCCCC",
		"q2": "GGGGGG",
		"q3": "TTTTTT",
		"q4": "ACACAC",
	}

	got, err := parseSAM(path, unique)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"AAAAAA": "P3B3",
		"ACACAC": "P3H1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSAM() = %v, want %v", got, want)
	}
}

// Test_Assign_buildsIndexOnce checks that concurrent Assign calls share one
// index build: the counting workers all call Assign on the same Mapper.
func Test_Assign_buildsIndexOnce(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "build.log")

	list := filepath.Join(dir, "barcodes.fa")
	if err := os.WriteFile(list, []byte(">P3B3\nAAAAAA\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// stand-in bowtie2-build: log start/done around a sleep so overlapping
	// invocations interleave in the log
	build := "#!/bin/sh\n" +
		"echo start >> \"" + logPath + "\"\n" +
		"sleep 1\n" +
		"touch \"$2.1.bt2\"\n" +
		"echo done >> \"" + logPath + "\"\n"
	if err := os.WriteFile(filepath.Join(dir, "bowtie2-build"), []byte(build), 0755); err != nil {
		t.Fatal(err)
	}

	// stand-in bowtie2: write an empty SAM to the -S target
	align := "#!/bin/sh\n" +
		"out=\"\"\nprev=\"\"\n" +
		"for a in \"$@\"; do\n" +
		"  if [ \"$prev\" = \"-S\" ]; then out=\"$a\"; fi\n" +
		"  prev=\"$a\"\n" +
		"done\n" +
		"printf '@HD\\tVN:1.0\\n' > \"$out\"\n"
	if err := os.WriteFile(filepath.Join(dir, "bowtie2"), []byte(align), 0755); err != nil {
		t.Fatal(err)
	}

	m, err := New(filepath.Join(dir, "bowtie2"), list, dir, 1)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Assign([][]byte{[]byte("AAAAAA")}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	log, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(log) != "start\ndone\n" {
		t.Errorf("bowtie2-build ran more than once: log %q", log)
	}
}

func Test_New_missingExecutable(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "no-such-bowtie2"), "list.fa", t.TempDir(), 1); err == nil {
		t.Error("New() expected an error for a missing executable")
	}
}

func Test_writeQuery(t *testing.T) {
	m := &Mapper{dir: t.TempDir()}

	raw := [][]byte{
		[]byte("aaaaaa"),
		[]byte("CCCCCC"),
		[]byte("AAAAAA"), // dup of the first after case folding
	}
	path, unique, err := m.writeQuery(raw)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(path)

	want := map[string]string{"q0": "AAAAAA", "q1": "CCCCCC"}
	if !reflect.DeepEqual(unique, want) {
		t.Errorf("writeQuery() unique = %v, want %v", unique, want)
	}

	fa, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(fa) != ">q0\nAAAAAA\n>q1\nCCCCCC\n" {
		t.Errorf("writeQuery() wrote %q", fa)
	}
}
