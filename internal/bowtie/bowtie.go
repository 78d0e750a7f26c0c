// Package bowtie assigns extracted barcodes to list entries with an
// external bowtie2 executable.
package bowtie

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// minMAPQ is the mapping quality below which an alignment is discarded.
const minMAPQ = 10

// Mapper wraps one bowtie2 invocation: index the barcode list once, write
// the query FASTA, align, parse the SAM output.
type Mapper struct {
	// path to the bowtie2 executable
	exe string

	// path to the strain barcode FASTA (also names the cached index)
	listPath string

	// scratch dir for query and output files
	dir string

	// alignment threads
	threads int

	// the index is built at most once; Assign is called concurrently from
	// the counting workers
	buildOnce sync.Once
	index     string
	buildErr  error
}

// New finds the bowtie2 executable (exe may be empty to search PATH) and
// returns a Mapper for the given barcode list.
func New(exe, listPath, dir string, threads int) (*Mapper, error) {
	if exe == "" {
		found, err := exec.LookPath("bowtie2")
		if err != nil {
			return nil, fmt.Errorf("failed to find a bowtie2 executable on PATH")
		}
		exe = found
	}
	if _, err := os.Stat(exe); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to find a bowtie2 executable at %s", exe)
	}
	if threads < 1 {
		threads = 1
	}
	return &Mapper{exe: exe, listPath: listPath, dir: dir, threads: threads}, nil
}

// Assign maps every unique raw barcode to its BCID via bowtie2. It
// satisfies counter.Assigner.
func (m *Mapper) Assign(raw [][]byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	index, err := m.buildIndex()
	if err != nil {
		return nil, err
	}

	query, unique, err := m.writeQuery(raw)
	if err != nil {
		return nil, err
	}
	defer os.Remove(query)

	out := query + ".sam"
	defer os.Remove(out)

	// --norc: barcodes were extracted in template orientation already
	mapCmd := exec.Command(
		m.exe,
		"-x", index,
		"-U", query,
		"-S", out,
		"-f",
		"--norc",
		"--no-unal",
		"-p", strconv.Itoa(m.threads),
	)
	if output, err := mapCmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to execute bowtie2: %v: %s", err, string(output))
	}

	return parseSAM(out, unique)
}

// buildIndex runs bowtie2-build once per barcode list; the index is cached
// beside the list and reused across samples and workers.
func (m *Mapper) buildIndex() (string, error) {
	m.buildOnce.Do(func() {
		m.index, m.buildErr = m.runBuild()
	})
	return m.index, m.buildErr
}

func (m *Mapper) runBuild() (string, error) {
	index := strings.TrimSuffix(m.listPath, filepath.Ext(m.listPath)) + ".bt2idx"
	if _, err := os.Stat(index + ".1.bt2"); err == nil {
		return index, nil
	}

	build := m.exe + "-build"
	if _, err := os.Stat(build); os.IsNotExist(err) {
		found, lookErr := exec.LookPath("bowtie2-build")
		if lookErr != nil {
			return "", fmt.Errorf("failed to find bowtie2-build next to %s or on PATH", m.exe)
		}
		build = found
	}

	buildCmd := exec.Command(build, m.listPath, index)
	if output, err := buildCmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to execute bowtie2-build: %v: %s", err, string(output))
	}
	return index, nil
}

// writeQuery writes the unique raw barcodes as a FASTA query file. The
// query IDs are q<N>; unique maps them back to the raw sequences.
func (m *Mapper) writeQuery(raw [][]byte) (path string, unique map[string]string, err error) {
	unique = map[string]string{}
	var buf bytes.Buffer
	n := 0
	seen := map[string]bool{}
	for _, bc := range raw {
		key := strings.ToUpper(string(bc))
		if seen[key] {
			continue
		}
		seen[key] = true
		qid := "q" + strconv.Itoa(n)
		unique[qid] = key
		fmt.Fprintf(&buf, ">%s\n%s\n", qid, key)
		n++
	}

	fh, err := os.CreateTemp(m.dir, "bowtie_query_*.fa")
	if err != nil {
		return "", nil, err
	}
	if _, err := fh.Write(buf.Bytes()); err != nil {
		fh.Close()
		return "", nil, err
	}
	return fh.Name(), unique, fh.Close()
}

// parseSAM reads the alignment output into raw barcode -> BCID. Only
// primary alignments at or above minMAPQ count.
func parseSAM(path string, unique map[string]string) (map[string]string, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	for _, line := range strings.Split(string(file), "\n") {
		// header lines start with an @
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 5 {
			continue
		}

		qid, flagStr, rname, mapqStr := cols[0], cols[1], cols[2], cols[4]
		flag, _ := strconv.Atoi(flagStr)
		mapq, _ := strconv.Atoi(mapqStr)

		// 0x4 unmapped, 0x100 secondary, 0x800 supplementary
		if rname == "*" || flag&0x4 != 0 || flag&0x100 != 0 || flag&0x800 != 0 {
			continue
		}
		if mapq < minMAPQ {
			continue
		}

		if raw, ok := unique[qid]; ok {
			out[raw] = rname
		}
	}
	return out, nil
}
