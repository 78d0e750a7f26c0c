package coex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/madeline1230/Coexistence-for-Dis-evo/config"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/assay"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/platemap"
	"github.com/spf13/cobra"
)

// Analyze is the handler for `coex analyze`.
func Analyze(cmd *cobra.Command, args []string) {
	c := config.New()

	countsPath, _ := cmd.Flags().GetString("counts")
	platemapPath, _ := cmd.Flags().GetString("platemap")
	out, _ := cmd.Flags().GetString("out")
	pair, _ := cmd.Flags().GetInt("pair")
	twelveWell, _ := cmd.Flags().GetBool("twelve-well")
	summary, _ := cmd.Flags().GetBool("summary")

	counts, err := assay.ReadCounts(countsPath)
	if err != nil {
		stderr.Fatalf("failed to read counts: %v", err)
	}
	pm, err := platemap.Load(platemapPath)
	if err != nil {
		stderr.Fatalf("failed to read plate map: %v", err)
	}

	records := assay.Join(counts, pm, twelveWell)
	if len(records) == 0 {
		stderr.Fatalln("no counts matched the plate map; check the sample column names")
	}

	if err := assay.WriteRecords(out, records); err != nil {
		stderr.Fatalf("failed to write %s: %v", out, err)
	}
	stderr.Printf("wrote %d records to %s", len(records), out)

	if pair > 0 {
		writePair(records, pair, c, filepath.Dir(out))
	}

	if summary {
		printSummary(records)
	}
}

// writePair normalizes one pair's two strains against each other and
// writes pair<N>_frequencies.csv beside the long-format table.
func writePair(records []assay.Record, pair int, c config.Config, dir string) {
	pairKey := strconv.Itoa(pair)
	strains, ok := c.Pairs[pairKey]
	if !ok || len(strains) != 2 {
		stderr.Fatalf("pair %d is not in the strain-pair table", pair)
	}

	freqs := assay.Normalize(records, pairKey, strains[0], strains[1])
	if len(freqs) == 0 {
		stderr.Fatalf("no data for pair %d (%s vs %s)", pair, strains[0], strains[1])
	}

	path := filepath.Join(dir, fmt.Sprintf("pair%d_frequencies.csv", pair))
	if err := assay.WriteFrequencies(path, freqs); err != nil {
		stderr.Fatalf("failed to write %s: %v", path, err)
	}
	stderr.Printf("wrote %s (%s vs %s)", path, strains[0], strains[1])
}

// printSummary prints one line per pair to stdout.
func printSummary(records []assay.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "pair\trecords\tconditions\ttimepoints\treplicates\tbarcodes")
	for _, s := range assay.Summarize(records) {
		tps := make([]string, len(s.Timepoints))
		for i, tp := range s.Timepoints {
			tps[i] = strconv.Itoa(tp)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			s.Pair,
			s.Records,
			strings.Join(s.Conditions, ","),
			strings.Join(tps, ","),
			strings.Join(s.Replicates, ","),
			strings.Join(s.Barcodes, ","),
		)
	}
	w.Flush()
}
