// ABOUTME: The index subcommand: rescan the analyzer data directory.
// ABOUTME: Rewrites functions.json from the per-function directories actually on disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cfglab/flowviz/catalog"
	"github.com/cfglab/flowviz/config"
)

// indexFlags holds the index subcommand's flag values before the config overlay.
type indexFlags struct {
	configPath string
	dataDir    string
}

func newIndexFlagSet(xf *indexFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("flowviz index", flag.ContinueOnError)
	fs.StringVar(&xf.configPath, "config", "", "config file (default: ./flowviz.yaml when present)")
	fs.StringVar(&xf.dataDir, "data", "", "analyzer output directory (default: data)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: flowviz index [flags]")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Rescan the data directory and rewrite functions.json.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	return fs
}

// parseIndex resolves the index configuration from flags and flowviz.yaml.
func parseIndex(args []string) (*config.Config, error) {
	var xf indexFlags
	fs := newIndexFlagSet(&xf)
	if err := fs.Parse(args); err != nil {
		return nil, &usageErr{err}
	}

	cfg, err := config.LoadOrDefault(xf.configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.Dir = xf.dataDir
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runIndex(args []string) int {
	cfg, err := parseIndex(args)
	if err != nil {
		return exitFor(err)
	}

	cat := catalog.New(cfg.Data.Dir)
	names, err := cat.WriteIndex()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Printf("indexed %d function(s) in %s\n", len(names), filepath.Join(cfg.Data.Dir, catalog.IndexFile))
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	return 0
}
