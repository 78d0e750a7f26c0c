package cmd

import (
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/coex"
	"github.com/spf13/cobra"
)

// countCmd runs the barcode counting pipeline: demux (optional), extraction
// and assignment, then the counts matrix.
var countCmd = &cobra.Command{
	Use:   "count",
	Run:   coex.Count,
	Short: "Count strain barcodes per sample and write a counts matrix",
	Long: `Count strain barcodes per sample and write a counts matrix.

count locates the barcode locus of the amplicon template (the run of Ns) in
each read by matching the flanking sequences, extracts the variable bases and
assigns them to the closest entry of the strain barcode list. The result is
barcode_counts.csv: one row per barcode (BCID), one column per sample.

By default count demultiplexes the pooled reads first. If per-sample files
already exist (e.g. from 'coex rename'), pass --skip-split.`,
	SuggestionsMinimumDistance: 3,
}

// set flags
func init() {
	countCmd.Flags().StringP("fastq-dir", "f", "", "directory with input FASTQ files")
	countCmd.Flags().StringP("out", "o", "", "output directory for counts and stats")
	countCmd.Flags().StringP("template", "t", "", "FASTA file with the amplicon template (barcode locus as Ns)")
	countCmd.Flags().StringP("barcode-list", "b", "", "FASTA file with the strain barcodes (IDs become BCIDs)")
	countCmd.Flags().StringP("multi-bc", "m", "", "FASTA file with the multiplexing index sequences")
	countCmd.Flags().StringP("sample", "a", "", "sample sheet (CSV or XLSX) mapping wells to index names")
	countCmd.Flags().BoolP("paired-end", "p", true, "reads are paired-end (R1 and R2)")
	countCmd.Flags().Bool("skip-split", false, "skip demultiplexing; per-sample FASTQ files already exist")
	countCmd.Flags().Bool("demux-only", false, "stop after demultiplexing; write no counts")
	countCmd.Flags().Bool("remap", false, "re-assign cached extracted barcodes against the barcode list")
	countCmd.Flags().Bool("use-bowtie2", false, "assign barcodes with bowtie2 instead of Hamming distance")
	countCmd.Flags().IntP("threads", "j", 0, "worker count for per-sample counting (default from settings)")
	countCmd.Flags().IntP("read-length", "r", 0, "truncate reads to this length before matching (default from settings)")

	countCmd.MarkFlagRequired("fastq-dir")
	countCmd.MarkFlagRequired("out")

	RootCmd.AddCommand(countCmd)
}
