// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DemuxConfig is settings for splitting pooled reads by multiplexing index
type DemuxConfig struct {
	// allowed mismatches between a read prefix and an index sequence
	Mismatches int `mapstructure:"mismatches"`

	// reads shorter than this after index trimming are dropped
	MinReadLength int `mapstructure:"min-read-length"`
}

// CountConfig is settings for barcode extraction and assignment
type CountConfig struct {
	// allowed mismatches when locating a template flank in a read
	FlankMismatches int `mapstructure:"flank-mismatches"`

	// allowed mismatches between an extracted barcode and a list entry
	BarcodeMismatches int `mapstructure:"barcode-mismatches"`

	// reads are truncated to this length before matching
	ReadLength int `mapstructure:"read-length"`

	// number of samples counted concurrently
	Threads int `mapstructure:"threads"`

	// path to the bowtie2 executable (empty: found on PATH)
	Bowtie2 string `mapstructure:"bowtie2"`
}

// ClusterConfig is settings for SLURM job submission
type ClusterConfig struct {
	Partition string `mapstructure:"partition"`

	// walltime request, HH:MM:SS
	Time string `mapstructure:"time"`

	// memory request, e.g. "16G"
	Memory string `mapstructure:"memory"`

	CPUs int `mapstructure:"cpus"`

	// optional accounting group (-A)
	Account string `mapstructure:"account"`

	// environment modules loaded before the count command runs
	Modules []string `mapstructure:"modules"`
}

// Config is the root-level settings struct and is a mix of settings
// available in a settings YAML file and those from the command line
type Config struct {
	Demux   DemuxConfig   `mapstructure:"demux"`
	Count   CountConfig   `mapstructure:"count"`
	Cluster ClusterConfig `mapstructure:"cluster"`

	// Pairs maps a pair number to the two strain BCIDs competed in it.
	// Overrides the built-in assay design table when set
	Pairs map[string][]string `mapstructure:"pairs"`
}

// DefaultPairs is the strain-pair table of the assay design: pair number to
// the two competed strain BCIDs. Overridable through the "pairs" setting.
var DefaultPairs = map[string][]string{
	"1":  {"P3B3", "P3H1"},
	"2":  {"P3C1", "P3G7"},
	"3":  {"P3B3", "P3G7"},
	"4":  {"P2B1", "P3H5"},
	"5":  {"P2B1", "P4G6"},
	"6":  {"P3C2", "P4G6"},
	"7":  {"P3C2", "P3H5"},
	"8":  {"P4F2", "P3D9"},
	"9":  {"P4F2", "P3A7"},
	"10": {"P4F2", "P5F8"},
	"11": {"P4C11", "P3D9"},
	"12": {"P4C11", "P5F8"},
	"13": {"P4C11", "P3A7"},
}

// settingsFlag is the bound --settings persistent flag, read during Setup
var settingsFlag *pflag.Flag

// BindSettingsFlag registers the root command's --settings flag so Setup can
// find the user's settings file
func BindSettingsFlag(f *pflag.Flag) {
	settingsFlag = f
}

// Setup registers defaults and reads the optional settings file. Called by
// cobra.OnInitialize before any command runs
func Setup() {
	viper.SetDefault("demux.mismatches", 1)
	viper.SetDefault("demux.min-read-length", 30)

	viper.SetDefault("count.flank-mismatches", 2)
	viper.SetDefault("count.barcode-mismatches", 2)
	viper.SetDefault("count.read-length", 150)
	viper.SetDefault("count.threads", runtime.NumCPU())

	viper.SetDefault("cluster.partition", "standard")
	viper.SetDefault("cluster.time", "12:00:00")
	viper.SetDefault("cluster.memory", "16G")
	viper.SetDefault("cluster.cpus", 8)
	viper.SetDefault("cluster.modules", []string{"python/3.9", "bowtie2/2.4.5"})

	if settingsFlag != nil && settingsFlag.Value.String() != "" {
		viper.SetConfigFile(settingsFlag.Value.String())
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("failed to read settings file: %v", err)
		}
	}
}

// New returns a new Config struct populated by Viper settings (either from
// the settings YAML and/or command line arguments)
func New() Config {
	var c Config

	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings into struct, %v", err)
	}

	if len(c.Pairs) == 0 {
		c.Pairs = DefaultPairs
	}

	return c
}
