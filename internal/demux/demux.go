package demux

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/platemap"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
)

// stderr is for logging to Stderr (without an annoying timestamp)
var stderr = log.New(os.Stderr, "", 0)

// Undetermined is the pseudo-sample reads land in when no well matches.
const Undetermined = "undetermined"

// Options configures one demultiplexing run.
type Options struct {
	// directory with the pooled R1 (and R2) FASTQ files
	FastqDir string

	// destination for the per-sample FASTQ files and demux_stats.tsv
	OutDir string

	// path to the multiplexing index FASTA
	MultiBCPath string

	// path to the sample sheet (CSV or XLSX)
	SamplePath string

	PairedEnd bool

	// allowed mismatches per index
	Mismatches int

	// reads shorter than this after trimming are dropped
	MinReadLength int
}

// Stats is the per-sample read tally of a run.
type Stats struct {
	// reads per sample, including Undetermined
	Reads map[string]int

	// total read (pairs) seen
	Total int
}

// Samples is the number of real samples that received reads; undetermined
// is not one of them.
func (s *Stats) Samples() int {
	n := 0
	for name := range s.Reads {
		if name != Undetermined {
			n++
		}
	}
	return n
}

// Run demultiplexes every pooled FASTQ file in opts.FastqDir into
// per-sample files under opts.OutDir and writes demux_stats.tsv.
func Run(ctx context.Context, opts Options) (*Stats, error) {
	sheet, err := platemap.LoadSampleSheet(opts.SamplePath)
	if err != nil {
		return nil, err
	}
	indexes, err := seqio.ReadFasta(opts.MultiBCPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read index FASTA: %v", err)
	}

	assigner, err := NewAssigner(sheet, indexes, opts.Mismatches, opts.PairedEnd)
	if err != nil {
		return nil, err
	}

	pools, err := findPooled(opts.FastqDir, opts.PairedEnd)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, err
	}

	sinks, err := newSinkSet(opts.OutDir, append(assigner.Names(), Undetermined), opts.PairedEnd)
	if err != nil {
		return nil, err
	}
	defer sinks.close()

	stats := &Stats{Reads: map[string]int{}}
	for _, pool := range pools {
		stderr.Printf("demultiplexing %s", filepath.Base(pool.r1))
		if err := splitPool(ctx, pool, assigner, sinks, opts, stats); err != nil {
			return nil, err
		}
	}

	if err := sinks.close(); err != nil {
		return nil, err
	}
	if err := writeStats(filepath.Join(opts.OutDir, "demux_stats.tsv"), stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// pooledPair is one pooled R1 file and its R2 mate (empty if single-end).
type pooledPair struct {
	r1 string
	r2 string
}

// findPooled locates the pooled FASTQ files to split. R1 files are matched
// by an "_R1" name component; paired-end runs require the "_R2" mate to
// exist beside each one.
func findPooled(dir string, paired bool) ([]pooledPair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pools []pooledPair
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isFastq(name) || !strings.Contains(name, "_R1") {
			continue
		}

		p := pooledPair{r1: filepath.Join(dir, name)}
		if paired {
			mate := strings.Replace(name, "_R1", "_R2", 1)
			p.r2 = filepath.Join(dir, mate)
			if _, err := os.Stat(p.r2); err != nil {
				return nil, fmt.Errorf("failed to find the R2 mate of %s", name)
			}
		}
		pools = append(pools, p)
	}

	if len(pools) == 0 {
		return nil, fmt.Errorf("no pooled *_R1* FASTQ files in %s", dir)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].r1 < pools[j].r1 })
	return pools, nil
}

func isFastq(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".fastq") || strings.HasSuffix(n, ".fastq.gz") ||
		strings.HasSuffix(n, ".fq") || strings.HasSuffix(n, ".fq.gz")
}

// splitPool routes every read (pair) of one pooled file to its sample sink.
func splitPool(ctx context.Context, pool pooledPair, assigner *Assigner, sinks *sinkSet, opts Options, stats *Stats) error {
	route := func(r1, r2 seqio.Record) error {
		stats.Total++

		sample, trimFwd, trimRev, ok := assigner.Assign(r1.Seq, r2.Seq)
		name := Undetermined
		if ok {
			name = assigner.Name(sample)
			r1 = trimRecord(r1, trimFwd)
			if opts.PairedEnd {
				r2 = trimRecord(r2, trimRev)
			}
			if len(r1.Seq) < opts.MinReadLength || (opts.PairedEnd && len(r2.Seq) < opts.MinReadLength) {
				return nil // too short to count, drop silently
			}
		}

		stats.Reads[name]++
		return sinks.write(name, r1, r2)
	}

	if opts.PairedEnd {
		return seqio.ForEachPair(ctx, pool.r1, pool.r2, route)
	}
	return seqio.ForEachRead(ctx, pool.r1, func(r seqio.Record) error {
		return route(r, seqio.Record{})
	})
}

// trimRecord cuts n leading bases (the matched index) off a read.
func trimRecord(rec seqio.Record, n int) seqio.Record {
	if n > len(rec.Seq) {
		n = len(rec.Seq)
	}
	rec.Seq = rec.Seq[n:]
	if len(rec.Qual) >= n {
		rec.Qual = rec.Qual[n:]
	}
	return rec
}

// sinkSet owns the per-sample output writers.
type sinkSet struct {
	r1     map[string]*seqio.FastqWriter
	r2     map[string]*seqio.FastqWriter
	paired bool
	closed bool
}

func newSinkSet(dir string, names []string, paired bool) (*sinkSet, error) {
	s := &sinkSet{
		r1:     map[string]*seqio.FastqWriter{},
		r2:     map[string]*seqio.FastqWriter{},
		paired: paired,
	}
	for _, name := range names {
		w1, err := seqio.NewFastqWriter(filepath.Join(dir, name+"_R1.fastq.gz"))
		if err != nil {
			return nil, err
		}
		s.r1[name] = w1

		if paired {
			w2, err := seqio.NewFastqWriter(filepath.Join(dir, name+"_R2.fastq.gz"))
			if err != nil {
				return nil, err
			}
			s.r2[name] = w2
		}
	}
	return s, nil
}

func (s *sinkSet) write(name string, r1, r2 seqio.Record) error {
	if err := s.r1[name].Write(r1); err != nil {
		return err
	}
	if s.paired {
		return s.r2[name].Write(r2)
	}
	return nil
}

func (s *sinkSet) close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for _, w := range s.r1 {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	for _, w := range s.r2 {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// writeStats writes the per-sample read tallies as a TSV, samples sorted
// by name with undetermined last.
func writeStats(path string, stats *Stats) error {
	names := make([]string, 0, len(stats.Reads))
	for name := range stats.Reads {
		if name != Undetermined {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append(names, Undetermined)

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	fmt.Fprintln(fh, "sample\treads\tfraction")
	for _, name := range names {
		frac := 0.0
		if stats.Total > 0 {
			frac = float64(stats.Reads[name]) / float64(stats.Total)
		}
		fmt.Fprintf(fh, "%s\t%d\t%.4f\n", name, stats.Reads[name], frac)
	}
	return nil
}
