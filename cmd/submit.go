package cmd

import (
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/coex"
	"github.com/spf13/cobra"
)

// submitCmd renders a SLURM batch script for 'coex count' and optionally
// hands it to sbatch.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Run:   coex.Submit,
	Short: "Render a SLURM batch script for 'coex count' and optionally sbatch it",
	Long: `Render a SLURM batch script for 'coex count' and optionally sbatch it.

The script requests the configured partition, time, memory and CPU count,
loads the configured environment modules and re-invokes 'coex count' with
the flags passed here. Without --run the script is only written to disk so
it can be inspected or submitted by hand.`,
	SuggestionsMinimumDistance: 3,
}

// set flags
func init() {
	submitCmd.Flags().StringP("fastq-dir", "f", "", "directory with input FASTQ files")
	submitCmd.Flags().StringP("out", "o", "", "output directory for counts and stats")
	submitCmd.Flags().StringP("template", "t", "", "FASTA file with the amplicon template")
	submitCmd.Flags().StringP("barcode-list", "b", "", "FASTA file with the strain barcodes")
	submitCmd.Flags().StringP("multi-bc", "m", "", "FASTA file with the multiplexing index sequences")
	submitCmd.Flags().StringP("sample", "a", "", "sample sheet mapping wells to index names")
	submitCmd.Flags().BoolP("paired-end", "p", true, "reads are paired-end")
	submitCmd.Flags().Bool("skip-split", false, "skip demultiplexing in the submitted job")
	submitCmd.Flags().Bool("demux-only", false, "stop the submitted job after demultiplexing")
	submitCmd.Flags().Bool("remap", false, "re-assign cached barcodes in the submitted job")
	submitCmd.Flags().Bool("use-bowtie2", false, "assign barcodes with bowtie2 in the submitted job")
	submitCmd.Flags().IntP("read-length", "r", 0, "truncate reads to this length before matching")
	submitCmd.Flags().String("job-name", "coex_count", "SLURM job name")
	submitCmd.Flags().Int("cpus", 0, "CPUs to request (default from settings)")
	submitCmd.Flags().String("script-out", "", "where to write the batch script (default <out>/count_job.sh)")
	submitCmd.Flags().Bool("stdout", false, "also print the rendered script to stdout")
	submitCmd.Flags().Bool("run", false, "submit the script with sbatch after writing it")

	submitCmd.MarkFlagRequired("fastq-dir")
	submitCmd.MarkFlagRequired("out")

	RootCmd.AddCommand(submitCmd)
}
