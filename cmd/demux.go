package cmd

import (
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/coex"
	"github.com/spf13/cobra"
)

// demuxCmd splits pooled reads into per-well FASTQ files.
var demuxCmd = &cobra.Command{
	Use:   "demux",
	Run:   coex.Demux,
	Short: "Split pooled reads into per-sample FASTQ files by multiplexing index",
	Long: `Split pooled reads into per-sample FASTQ files by multiplexing index.

Each read pair is assigned to the well whose forward index matches the start
of R1 and whose reverse index matches the start of R2, within the configured
mismatch tolerance. Reads that match no well, or more than one equally well,
are written to undetermined_R1/R2.fastq.gz.`,
	SuggestionsMinimumDistance: 3,
}

// set flags
func init() {
	demuxCmd.Flags().StringP("fastq-dir", "f", "", "directory with the pooled R1/R2 FASTQ files")
	demuxCmd.Flags().StringP("out", "o", "", "output directory for per-sample FASTQ files")
	demuxCmd.Flags().StringP("multi-bc", "m", "", "FASTA file with the multiplexing index sequences")
	demuxCmd.Flags().StringP("sample", "a", "", "sample sheet (CSV or XLSX) mapping wells to index names")
	demuxCmd.Flags().BoolP("paired-end", "p", true, "reads are paired-end (R1 and R2)")
	demuxCmd.Flags().IntP("mismatches", "d", -1, "allowed mismatches per index (default from settings)")

	demuxCmd.MarkFlagRequired("fastq-dir")
	demuxCmd.MarkFlagRequired("out")
	demuxCmd.MarkFlagRequired("multi-bc")
	demuxCmd.MarkFlagRequired("sample")

	RootCmd.AddCommand(demuxCmd)
}
