// ABOUTME: CLI entrypoint for the flowviz development toolchain.
// ABOUTME: Dispatches the serve, watch, build, dev, index, and validate subcommands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cfglab/flowviz/bundle"
	"github.com/cfglab/flowviz/config"
	"github.com/cfglab/flowviz/history"
)

var version = "dev"

func main() {
	loadDotEnv(".env")
	os.Exit(run(os.Args[1:]))
}

// run dispatches the subcommand and returns the process exit code.
func run(args []string) int {
	if len(args) == 0 {
		printHelp(os.Stderr, version)
		return 0
	}

	switch args[0] {
	case "version", "-version", "--version":
		fmt.Printf("flowviz %s\n", version)
		return 0
	case "help", "-help", "--help", "-h":
		printHelp(os.Stdout, version)
		return 0
	case "serve":
		return runServe(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "build":
		return runBuild(args[1:])
	case "dev":
		return runDev(args[1:])
	case "index":
		return runIndex(args[1:])
	case "validate":
		return runValidate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", args[0])
		fmt.Fprintln(os.Stderr, `Run "flowviz help" for usage.`)
		return 2
	}
}

// usageErr marks a flag parsing problem the FlagSet already reported.
type usageErr struct {
	err error
}

func (e *usageErr) Error() string { return e.err.Error() }
func (e *usageErr) Unwrap() error { return e.err }

// exitFor maps a subcommand setup error onto an exit code: 0 for -help, 2 for
// flag errors (already printed by the FlagSet), 1 otherwise (printed here).
func exitFor(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var ue *usageErr
	if errors.As(err, &ue) {
		return 2
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}

// stringList collects repeated flag values, e.g. -path src -path lib.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// splitCommaList splits a comma-separated flag value, trimming whitespace and
// dropping empty items.
func splitCommaList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// signalContext returns a context cancelled on SIGINT/SIGTERM for graceful
// shutdown of the long-running subcommands.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// bundlerFromConfig builds the bundler invocation for the configured toolchain.
func bundlerFromConfig(cfg *config.Config) *bundle.Bundler {
	return &bundle.Bundler{
		Command:   cfg.Build.Bundler,
		Entry:     cfg.Build.Entry,
		Outfile:   cfg.Build.Outfile,
		Sourcemap: cfg.Build.Sourcemap,
		Minify:    cfg.Build.Minify,
		Define:    cfg.Build.Define,
	}
}

// openHistory opens the build history store, falling back to the XDG data dir
// when no file is configured. Failures are warnings, not errors: the
// toolchain works without history.
func openHistory(cfg *config.Config) *history.Store {
	path := cfg.History.File
	if path == "" {
		dataDir, err := defaultDataDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not resolve history location: %v\n", err)
			return nil
		}
		path = filepath.Join(dataDir, "builds.db")
	}

	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open build history: %v\n", err)
		return nil
	}

	if cfg.History.Keep > 0 {
		if err := store.Prune(cfg.History.Keep); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not prune build history: %v\n", err)
		}
	}
	return store
}

// recordBuild persists one build outcome when a history store is available.
func recordBuild(store *history.Store, b *history.Build) {
	if store == nil {
		return
	}
	if err := store.Record(b); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record build: %v\n", err)
	}
}
