package coex

import (
	"context"

	"github.com/madeline1230/Coexistence-for-Dis-evo/config"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/demux"
	"github.com/spf13/cobra"
)

// Demux is the handler for `coex demux`.
func Demux(cmd *cobra.Command, args []string) {
	c := config.New()

	opts := demuxOptions(cmd, c)
	stats, err := demux.Run(context.Background(), opts)
	if err != nil {
		stderr.Fatalf("failed to demultiplex: %v", err)
	}

	stderr.Printf("split %d reads across %d samples (%d undetermined)",
		stats.Total, stats.Samples(), stats.Reads[demux.Undetermined])
}

// demuxOptions assembles demux.Options from flags and settings. Shared
// with the count handler, which demultiplexes first by default.
func demuxOptions(cmd *cobra.Command, c config.Config) demux.Options {
	fastqDir, _ := cmd.Flags().GetString("fastq-dir")
	out, _ := cmd.Flags().GetString("out")
	multiBC, _ := cmd.Flags().GetString("multi-bc")
	sample, _ := cmd.Flags().GetString("sample")
	paired, _ := cmd.Flags().GetBool("paired-end")

	mismatches := c.Demux.Mismatches
	if cmd.Flags().Lookup("mismatches") != nil {
		if v, err := cmd.Flags().GetInt("mismatches"); err == nil && v >= 0 {
			mismatches = v
		}
	}

	return demux.Options{
		FastqDir:      fastqDir,
		OutDir:        out,
		MultiBCPath:   multiBC,
		SamplePath:    sample,
		PairedEnd:     paired,
		Mismatches:    mismatches,
		MinReadLength: c.Demux.MinReadLength,
	}
}
