// ABOUTME: The watch subcommand: rebuild the bundle whenever watched sources change.
// ABOUTME: Runs the dev loop without the HTTP server; Ctrl+C stops it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cfglab/flowviz/bundle"
	"github.com/cfglab/flowviz/config"
	"github.com/cfglab/flowviz/devloop"
	"github.com/cfglab/flowviz/watcher"
)

// watchFlags holds the watch subcommand's flag values before the config overlay.
type watchFlags struct {
	configPath string
	paths      stringList
	exts       string
	debounce   time.Duration
}

func newWatchFlagSet(wf *watchFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("flowviz watch", flag.ContinueOnError)
	fs.StringVar(&wf.configPath, "config", "", "config file (default: ./flowviz.yaml when present)")
	fs.Var(&wf.paths, "path", "directory to watch, repeatable (default: src)")
	fs.StringVar(&wf.exts, "ext", "", "comma-separated extensions to watch (default: .tsx)")
	fs.DurationVar(&wf.debounce, "debounce", 0, "quiet period before rebuilding (default: 250ms)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: flowviz watch [flags]")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Watch source trees and rebuild the bundle on change.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	return fs
}

// parseWatch resolves the watch configuration from flags and flowviz.yaml.
func parseWatch(args []string) (*config.Config, error) {
	var wf watchFlags
	fs := newWatchFlagSet(&wf)
	if err := fs.Parse(args); err != nil {
		return nil, &usageErr{err}
	}

	cfg, err := config.LoadOrDefault(wf.configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "path":
			cfg.Watch.Paths = wf.paths
		case "ext":
			cfg.Watch.Extensions = splitCommaList(wf.exts)
		case "debounce":
			cfg.Watch.Debounce = config.Duration(wf.debounce)
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runWatch(args []string) int {
	cfg, err := parseWatch(args)
	if err != nil {
		return exitFor(err)
	}

	store := openHistory(cfg)
	if store != nil {
		defer store.Close()
	}

	loop := &devloop.Loop{
		Watch: watcher.Options{
			Paths:      cfg.Watch.Paths,
			Extensions: cfg.Watch.Extensions,
			Ignore:     cfg.Watch.Ignore,
			Debounce:   cfg.Watch.Debounce.Std(),
		},
		Bundler:      bundlerFromConfig(cfg),
		Cache:        bundle.NewCache(),
		History:      store,
		InitialBuild: true,
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	if err := loop.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
