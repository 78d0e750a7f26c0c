package counter

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/demux"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
)

// stderr is for logging to Stderr (without an annoying timestamp)
var stderr = log.New(os.Stderr, "", 0)

// Options configures one counting run.
type Options struct {
	// directory with the per-sample *_R1.fastq(.gz) files
	FastqDir string

	// destination for barcode_counts.csv, count_stats.tsv and the caches
	OutDir string

	// amplicon template FASTA (barcode locus as Ns); unused with Remap
	TemplatePath string

	// strain barcode FASTA; record IDs become the matrix's BCIDs
	BarcodeListPath string

	// worker count; samples are counted concurrently
	Threads int

	// reads are truncated to this length before matching; 0 disables
	ReadLength int

	// allowed mismatches locating a template flank
	FlankMismatches int

	// allowed mismatches between an extracted barcode and a list entry
	BarcodeMismatches int

	// re-assign cached extracted barcodes instead of reading FASTQ
	Remap bool

	// NewAssigner overrides the Hamming assigner (used for bowtie2).
	// May be nil.
	NewAssigner func(list []seqio.Record) (Assigner, error)
}

// sampleResult is what one worker hands back for one sample.
type sampleResult struct {
	sample string
	counts map[string]int
	stats  SampleStats
	err    error
}

// Run counts strain barcodes for every per-sample FASTQ file in
// opts.FastqDir and writes the counts matrix and stats to opts.OutDir.
func Run(ctx context.Context, opts Options) (*Matrix, error) {
	list, err := seqio.ReadFasta(opts.BarcodeListPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read barcode list: %v", err)
	}

	assigner, err := buildAssigner(opts, list)
	if err != nil {
		return nil, err
	}

	var tmpl Template
	if !opts.Remap {
		tmpl, err = ParseTemplate(opts.TemplatePath)
		if err != nil {
			return nil, err
		}
		if tmpl.BarcodeLen != len(list[0].Seq) {
			return nil, fmt.Errorf("template barcode locus is %dbp but the barcode list entries are %dbp",
				tmpl.BarcodeLen, len(list[0].Seq))
		}
	}

	samples, err := findSamples(opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, err
	}

	results := countAll(ctx, opts, tmpl, assigner, samples)

	bcids := make([]string, len(list))
	for i, rec := range list {
		bcids[i] = rec.ID
	}
	matrix := NewMatrix(bcids)

	var stats []SampleStats
	for _, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("failed counting sample %s: %v", res.sample, res.err)
		}
		matrix.AddSample(res.sample, res.counts)
		stats = append(stats, res.stats)
	}

	if err := matrix.WriteCSV(filepath.Join(opts.OutDir, "barcode_counts.csv")); err != nil {
		return nil, err
	}
	if err := WriteStats(filepath.Join(opts.OutDir, "count_stats.tsv"), stats); err != nil {
		return nil, err
	}
	return matrix, nil
}

func buildAssigner(opts Options, list []seqio.Record) (Assigner, error) {
	if opts.NewAssigner != nil {
		return opts.NewAssigner(list)
	}
	return NewHammingAssigner(list, opts.BarcodeMismatches)
}

// findSamples discovers the samples to count. In remap mode the cached
// *.barcodes.txt.gz files of a previous run are the source of truth;
// otherwise every <sample>_R1.fastq(.gz) file in the FASTQ dir is counted.
func findSamples(opts Options) ([]string, error) {
	if opts.Remap {
		paths, err := filepath.Glob(filepath.Join(opts.OutDir, "*.barcodes.txt.gz"))
		if err != nil {
			return nil, err
		}
		var samples []string
		for _, p := range paths {
			samples = append(samples, strings.TrimSuffix(filepath.Base(p), ".barcodes.txt.gz"))
		}
		if len(samples) == 0 {
			return nil, fmt.Errorf("no cached *.barcodes.txt.gz files in %s to remap", opts.OutDir)
		}
		sort.Strings(samples)
		return samples, nil
	}

	entries, err := os.ReadDir(opts.FastqDir)
	if err != nil {
		return nil, err
	}

	var samples []string
	for _, e := range entries {
		name := e.Name()
		i := strings.Index(name, "_R1.")
		if e.IsDir() || i < 0 {
			continue
		}
		if !strings.HasSuffix(name, ".fastq") && !strings.HasSuffix(name, ".fastq.gz") {
			continue
		}
		sample := name[:i]
		if sample == demux.Undetermined {
			continue
		}
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no per-sample *_R1.fastq files in %s", opts.FastqDir)
	}
	sort.Strings(samples)
	return samples, nil
}

// countAll runs the per-sample work across opts.Threads workers and
// returns every sample's result.
func countAll(ctx context.Context, opts Options, tmpl Template, assigner Assigner, samples []string) []sampleResult {
	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}

	jobs := make(chan string, len(samples))
	out := make(chan sampleResult, len(samples))

	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for sample := range jobs {
				select {
				case <-ctx.Done():
					out <- sampleResult{sample: sample, err: ctx.Err()}
					continue
				default:
				}
				out <- countSample(ctx, opts, tmpl, assigner, sample)
			}
		}()
	}

	for _, s := range samples {
		jobs <- s
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]sampleResult, 0, len(samples))
	for res := range out {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].sample < results[j].sample })
	return results
}

// countSample extracts (or re-reads) one sample's barcodes, assigns them
// and tallies per-BCID counts.
func countSample(ctx context.Context, opts Options, tmpl Template, assigner Assigner, sample string) sampleResult {
	res := sampleResult{sample: sample, counts: map[string]int{}}
	res.stats.Sample = sample

	var raw [][]byte
	if opts.Remap {
		cached, err := readCache(filepath.Join(opts.OutDir, sample+".barcodes.txt.gz"))
		if err != nil {
			res.err = err
			return res
		}
		raw = cached
		res.stats.Total = len(raw)
		res.stats.Matched = len(raw)
	} else {
		path, err := findReadFile(opts.FastqDir, sample)
		if err != nil {
			res.err = err
			return res
		}

		err = seqio.ForEachRead(ctx, path, func(rec seqio.Record) error {
			res.stats.Total++
			seq := rec.Seq
			if opts.ReadLength > 0 && len(seq) > opts.ReadLength {
				seq = seq[:opts.ReadLength]
			}
			if bc, ok := tmpl.Extract(seq, opts.FlankMismatches); ok {
				res.stats.Matched++
				raw = append(raw, bc)
			}
			return nil
		})
		if err != nil {
			res.err = err
			return res
		}

		if err := writeCache(filepath.Join(opts.OutDir, sample+".barcodes.txt.gz"), raw); err != nil {
			res.err = err
			return res
		}
	}

	assigned, err := assigner.Assign(raw)
	if err != nil {
		res.err = err
		return res
	}

	for _, bc := range raw {
		if bcid, ok := assigned[strings.ToUpper(string(bc))]; ok {
			res.counts[bcid]++
			res.stats.Assigned++
		}
	}

	stderr.Printf("%s: %d reads, %d matched, %d assigned",
		sample, res.stats.Total, res.stats.Matched, res.stats.Assigned)
	return res
}

// findReadFile resolves a sample's R1 file, gzipped or not.
func findReadFile(dir, sample string) (string, error) {
	for _, name := range []string{sample + "_R1.fastq.gz", sample + "_R1.fastq"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("failed to find %s_R1.fastq(.gz) in %s", sample, dir)
}
