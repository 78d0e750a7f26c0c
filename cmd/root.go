// Package cmd is for command line interactions with the coex pipeline
package cmd

import (
	"log"

	"github.com/madeline1230/Coexistence-for-Dis-evo/config"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "coex",
	Short: `Count strain barcodes from pooled amplicon sequencing of coexistence assays.
Rename raw reads, demultiplex them by well, tally strain barcodes and join the
counts against a plate map`,
	Version: "0.3.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	cobra.OnInitialize(config.Setup)

	RootCmd.PersistentFlags().StringP("settings", "s", "", "path to a settings YAML file")
	config.BindSettingsFlag(RootCmd.PersistentFlags().Lookup("settings"))
}
