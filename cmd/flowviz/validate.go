// ABOUTME: The validate subcommand: lint graph dumps before the browser sees them.
// ABOUTME: Checks named files, or every function in the data directory, and exits non-zero on errors.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cfglab/flowviz/catalog"
	"github.com/cfglab/flowviz/config"
	"github.com/cfglab/flowviz/graph"
)

// validateFlags holds the validate subcommand's flag values before the config overlay.
type validateFlags struct {
	configPath string
	dataDir    string
}

func newValidateFlagSet(vf *validateFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("flowviz validate", flag.ContinueOnError)
	fs.StringVar(&vf.configPath, "config", "", "config file (default: ./flowviz.yaml when present)")
	fs.StringVar(&vf.dataDir, "data", "", "analyzer output directory (default: data)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: flowviz validate [flags] [file...]")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Lint graph JSON files. With no arguments, every function in the")
		fmt.Fprintln(fs.Output(), "data directory is checked.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	return fs
}

// parseValidate resolves the validate configuration. The returned args are
// the positional file paths left after flag parsing.
func parseValidate(args []string) (*config.Config, []string, error) {
	var vf validateFlags
	fs := newValidateFlagSet(&vf)
	if err := fs.Parse(args); err != nil {
		return nil, nil, &usageErr{err}
	}

	cfg, err := config.LoadOrDefault(vf.configPath)
	if err != nil {
		return nil, nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.Dir = vf.dataDir
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func runValidate(args []string) int {
	cfg, files, err := parseValidate(args)
	if err != nil {
		return exitFor(err)
	}

	if len(files) > 0 {
		return validateFiles(files)
	}
	return validateCatalog(catalog.New(cfg.Data.Dir))
}

// validateFiles lints explicitly named graph JSON files.
func validateFiles(paths []string) int {
	failed := 0
	for _, path := range paths {
		g, err := decodeGraphFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", path, err)
			failed++
			continue
		}
		if reportDiagnostics(path, graph.Lint(g)) {
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d file(s) failed validation\n", failed, len(paths))
		return 1
	}
	fmt.Printf("%d file(s) valid\n", len(paths))
	return 0
}

// validateCatalog lints every function dump in the data directory.
func validateCatalog(cat *catalog.Catalog) int {
	names, err := cat.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(names) == 0 {
		fmt.Printf("no graphs found in %s\n", cat.Dir())
		return 0
	}

	failed := 0
	for _, name := range names {
		g, err := cat.Graph(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", name, err)
			failed++
			continue
		}
		if reportDiagnostics(name, graph.Lint(g)) {
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d graph(s) failed validation\n", failed, len(names))
		return 1
	}
	fmt.Printf("%d graph(s) valid\n", len(names))
	return 0
}

// decodeGraphFile reads one graph JSON dump from disk.
func decodeGraphFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return graph.Decode(f)
}

// reportDiagnostics prints every diagnostic for one graph and reports whether
// any of them is an error. Warnings and infos are advisory.
func reportDiagnostics(label string, diags []graph.Diagnostic) bool {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: [%s] %s", label, d.Severity, d.Message)
		if d.NodeID != "" {
			fmt.Fprintf(os.Stderr, " (node: %s)", d.NodeID)
		}
		if d.EdgeID != "" {
			fmt.Fprintf(os.Stderr, " (edge: %s)", d.EdgeID)
		}
		fmt.Fprintln(os.Stderr)
	}
	return graph.HasErrors(diags)
}
