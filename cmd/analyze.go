package cmd

import (
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/coex"
	"github.com/spf13/cobra"
)

// analyzeCmd joins a counts matrix with the plate map and writes the
// long-format competition table.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Run:   coex.Analyze,
	Short: "Join a counts matrix with the plate map into a competition table",
	Long: `Join a counts matrix with the plate map into a competition table.

Each sample column (CoexP<plate>_<well>) is looked up in the plate map to
recover its pair, condition, replicate and timepoint. The output is a
long-format CSV with one row per (barcode, sample) pair. With --pair N the
two expected strains of that pair are normalized to each other, A/(A+B),
per condition, replicate and timepoint.`,
	SuggestionsMinimumDistance: 3,
}

// set flags
func init() {
	analyzeCmd.Flags().StringP("counts", "c", "", "barcode counts CSV (BCID rows, sample columns)")
	analyzeCmd.Flags().StringP("platemap", "m", "", "plate map (CSV or XLSX) with PLATE, WELL, CONDITION columns")
	analyzeCmd.Flags().StringP("out", "o", "competition_data.csv", "output CSV for the long-format table")
	analyzeCmd.Flags().IntP("pair", "p", 0, "also write pair<N>_frequencies.csv with two-strain normalization")
	analyzeCmd.Flags().Bool("twelve-well", false, "keep only 12-well (C_ format) plate map entries")
	analyzeCmd.Flags().Bool("summary", false, "print a per-pair summary to stdout")

	analyzeCmd.MarkFlagRequired("counts")
	analyzeCmd.MarkFlagRequired("platemap")

	RootCmd.AddCommand(analyzeCmd)
}
