// ABOUTME: The serve subcommand: static dev server with caching disabled.
// ABOUTME: Parses serve flags, overlays them on flowviz.yaml, and runs until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cfglab/flowviz/config"
	"github.com/cfglab/flowviz/devserver"
)

// serveFlags holds the serve subcommand's flag values before the config overlay.
type serveFlags struct {
	configPath string
	host       string
	port       int
	root       string
	dataDir    string
}

func newServeFlagSet(sf *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("flowviz serve", flag.ContinueOnError)
	fs.StringVar(&sf.configPath, "config", "", "config file (default: ./flowviz.yaml when present)")
	fs.StringVar(&sf.host, "host", "", "listen host (default: 127.0.0.1)")
	fs.IntVar(&sf.port, "port", 0, "listen port (default: 8080)")
	fs.StringVar(&sf.root, "root", "", "static file root (default: .)")
	fs.StringVar(&sf.dataDir, "data", "", "analyzer output directory (default: data)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: flowviz serve [flags]")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Start the static dev server with caching disabled.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	return fs
}

// parseServe resolves the serve configuration from flags and flowviz.yaml.
// Flags that were set explicitly win over the file.
func parseServe(args []string) (*config.Config, error) {
	var sf serveFlags
	fs := newServeFlagSet(&sf)
	if err := fs.Parse(args); err != nil {
		return nil, &usageErr{err}
	}

	cfg, err := config.LoadOrDefault(sf.configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = sf.host
		case "port":
			cfg.Server.Port = sf.port
		case "root":
			cfg.Server.Root = sf.root
		case "data":
			cfg.Data.Dir = sf.dataDir
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(args []string) int {
	cfg, err := parseServe(args)
	if err != nil {
		return exitFor(err)
	}

	srv, err := devserver.NewServer(devserver.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Root:    cfg.Server.Root,
		DataDir: cfg.Data.Dir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	log.Printf("serve: http://%s (root %s, data %s)", srv.Addr(), cfg.Server.Root, cfg.Data.Dir)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
