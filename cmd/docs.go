package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docsCmd generates Markdown documentation for the command tree.
var docsCmd = &cobra.Command{
	Use:    "docs",
	Hidden: true,
	Short:  "Generate Markdown docs for every coex command",
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("out")
		if err := doc.GenMarkdownTree(RootCmd, out); err != nil {
			log.Fatalf("failed to generate docs: %v", err)
		}
	},
}

func init() {
	docsCmd.Flags().StringP("out", "o", "./docs", "directory to write Markdown files to")

	RootCmd.AddCommand(docsCmd)
}
