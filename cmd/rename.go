package cmd

import (
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/coex"
	"github.com/spf13/cobra"
)

// renameCmd is for renaming raw sequencer FASTQ files to per-well names.
var renameCmd = &cobra.Command{
	Use:   "rename [fastq-dir]",
	Run:   coex.Rename,
	Short: "Rename raw MiSeq FASTQ files to <run>_<well>_R<1|2>.fastq.gz",
	Long: `Rename raw MiSeq FASTQ files to per-well names.

The sequencing core delivers files like:
  000000000-GRN6V_l01_n01_CoexP1_1__A1.fastq.gz
which rename turns into:
  CoexP1_A01_R1.fastq.gz

Well numbers are zero-padded so files sort in plate order. Files are renamed
in place unless an output directory is given, in which case they are copied
(or symlinked with --symlink) and the originals are left alone.`,
	Args:                       cobra.ExactArgs(1),
	SuggestionsMinimumDistance: 3,
}

// set flags
func init() {
	renameCmd.Flags().StringP("out", "o", "", "output directory (default: rename in place)")
	renameCmd.Flags().BoolP("symlink", "l", false, "symlink into the output directory instead of copying")
	renameCmd.Flags().BoolP("dry-run", "n", false, "print planned operations without touching any files")

	RootCmd.AddCommand(renameCmd)
}
