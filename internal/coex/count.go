package coex

import (
	"context"

	"github.com/madeline1230/Coexistence-for-Dis-evo/config"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/bowtie"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/counter"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/demux"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
	"github.com/spf13/cobra"
)

// Count is the handler for `coex count`: demux (unless skipped), then
// extract and assign strain barcodes, then write the counts matrix.
func Count(cmd *cobra.Command, args []string) {
	c := config.New()
	ctx := context.Background()

	fastqDir, _ := cmd.Flags().GetString("fastq-dir")
	out, _ := cmd.Flags().GetString("out")
	template, _ := cmd.Flags().GetString("template")
	barcodeList, _ := cmd.Flags().GetString("barcode-list")
	skipSplit, _ := cmd.Flags().GetBool("skip-split")
	demuxOnly, _ := cmd.Flags().GetBool("demux-only")
	remap, _ := cmd.Flags().GetBool("remap")
	useBowtie, _ := cmd.Flags().GetBool("use-bowtie2")

	threads, _ := cmd.Flags().GetInt("threads")
	if threads < 1 {
		threads = c.Count.Threads
	}
	readLength, _ := cmd.Flags().GetInt("read-length")
	if readLength < 1 {
		readLength = c.Count.ReadLength
	}

	// the directory the per-sample files are counted from
	sampleDir := fastqDir

	if !skipSplit && !remap {
		multiBC, _ := cmd.Flags().GetString("multi-bc")
		sample, _ := cmd.Flags().GetString("sample")
		if multiBC == "" || sample == "" {
			cmd.Help()
			stderr.Fatalln("demultiplexing needs --multi-bc and --sample; or pass --skip-split if per-sample files already exist")
		}

		stats, err := demux.Run(ctx, demuxOptions(cmd, c))
		if err != nil {
			stderr.Fatalf("failed to demultiplex: %v", err)
		}
		stderr.Printf("split %d reads (%d undetermined)", stats.Total, stats.Reads[demux.Undetermined])
		sampleDir = out

		if demuxOnly {
			return
		}
	}

	if barcodeList == "" || (template == "" && !remap) {
		cmd.Help()
		stderr.Fatalln("counting needs --template and --barcode-list")
	}

	opts := counter.Options{
		FastqDir:          sampleDir,
		OutDir:            out,
		TemplatePath:      template,
		BarcodeListPath:   barcodeList,
		Threads:           threads,
		ReadLength:        readLength,
		FlankMismatches:   c.Count.FlankMismatches,
		BarcodeMismatches: c.Count.BarcodeMismatches,
		Remap:             remap,
	}

	if useBowtie {
		opts.NewAssigner = func(list []seqio.Record) (counter.Assigner, error) {
			return bowtie.New(c.Count.Bowtie2, barcodeList, out, threads)
		}
	}

	matrix, err := counter.Run(ctx, opts)
	if err != nil {
		stderr.Fatalf("failed to count barcodes: %v", err)
	}

	stderr.Printf("wrote barcode_counts.csv: %d barcodes x %d samples", len(matrix.BCIDs), len(matrix.Samples))
}
