// ABOUTME: The dev subcommand: serve and watch in one process, with live reload.
// ABOUTME: Optionally runs the Bubble Tea dashboard instead of plain log output.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/cfglab/flowviz/bundle"
	"github.com/cfglab/flowviz/config"
	"github.com/cfglab/flowviz/devloop"
	"github.com/cfglab/flowviz/devserver"
	"github.com/cfglab/flowviz/tui"
	"github.com/cfglab/flowviz/watcher"
)

// devFlags holds the dev subcommand's flag values before the config overlay.
// dev accepts the union of the serve, watch, and build flags plus -tui.
type devFlags struct {
	configPath string
	host       string
	port       int
	root       string
	dataDir    string
	paths      stringList
	exts       string
	debounce   time.Duration
	entry      string
	outfile    string
	bundler    string
	sourcemap  bool
	minify     bool
	tui        bool
}

func newDevFlagSet(df *devFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("flowviz dev", flag.ContinueOnError)
	fs.StringVar(&df.configPath, "config", "", "config file (default: ./flowviz.yaml when present)")
	fs.StringVar(&df.host, "host", "", "listen host (default: 127.0.0.1)")
	fs.IntVar(&df.port, "port", 0, "listen port (default: 8080)")
	fs.StringVar(&df.root, "root", "", "static file root (default: .)")
	fs.StringVar(&df.dataDir, "data", "", "analyzer output directory (default: data)")
	fs.Var(&df.paths, "path", "directory to watch, repeatable (default: src)")
	fs.StringVar(&df.exts, "ext", "", "comma-separated extensions to watch (default: .tsx)")
	fs.DurationVar(&df.debounce, "debounce", 0, "quiet period before rebuilding (default: 250ms)")
	fs.StringVar(&df.entry, "entry", "", "bundle entry point (default: src/index.tsx)")
	fs.StringVar(&df.outfile, "outfile", "", "bundle output file (default: dist/bundle.js)")
	fs.StringVar(&df.bundler, "bundler", "", "bundler executable (default: esbuild)")
	fs.BoolVar(&df.sourcemap, "sourcemap", true, "emit a sourcemap")
	fs.BoolVar(&df.minify, "minify", false, "minify the bundle")
	fs.BoolVar(&df.tui, "tui", false, "run with the interactive terminal dashboard")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: flowviz dev [flags]")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Run the dev server and the watch loop together.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	return fs
}

// parseDev resolves the dev configuration from flags and flowviz.yaml. The
// second result reports whether -tui was requested.
func parseDev(args []string) (*config.Config, bool, error) {
	var df devFlags
	fs := newDevFlagSet(&df)
	if err := fs.Parse(args); err != nil {
		return nil, false, &usageErr{err}
	}

	cfg, err := config.LoadOrDefault(df.configPath)
	if err != nil {
		return nil, false, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = df.host
		case "port":
			cfg.Server.Port = df.port
		case "root":
			cfg.Server.Root = df.root
		case "data":
			cfg.Data.Dir = df.dataDir
		case "path":
			cfg.Watch.Paths = df.paths
		case "ext":
			cfg.Watch.Extensions = splitCommaList(df.exts)
		case "debounce":
			cfg.Watch.Debounce = config.Duration(df.debounce)
		case "entry":
			cfg.Build.Entry = df.entry
		case "outfile":
			cfg.Build.Outfile = df.outfile
		case "bundler":
			cfg.Build.Bundler = df.bundler
		case "sourcemap":
			cfg.Build.Sourcemap = df.sourcemap
		case "minify":
			cfg.Build.Minify = df.minify
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, df.tui, nil
}

func runDev(args []string) int {
	cfg, withTUI, err := parseDev(args)
	if err != nil {
		return exitFor(err)
	}

	store := openHistory(cfg)
	if store != nil {
		defer store.Close()
	}

	srv, err := devserver.NewServer(devserver.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Root:    cfg.Server.Root,
		DataDir: cfg.Data.Dir,
		History: store,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
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
		Bus:          srv.Bus(),
		InitialBuild: true,
		AfterBuild:   srv.InvalidateRenderCache,
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	if withTUI {
		return runDevTUI(ctx, cancel, cfg, srv, loop)
	}

	log.Printf("dev: http://%s, watching %v", srv.Addr(), cfg.Watch.Paths)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	g.Go(func() error { return loop.Run(gctx) })

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runDevTUI runs the dev session behind the Bubble Tea dashboard. Build
// events reach the TUI through an event bridge fanned out alongside the SSE
// bus, so browser live reload keeps working.
func runDevTUI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, srv *devserver.Server, loop *devloop.Loop) int {
	model := tui.NewAppModel(tui.Options{
		Addr:       srv.Addr(),
		Roots:      cfg.Watch.Paths,
		Extensions: cfg.Watch.Extensions,
		Kicker:     loop,
		Cancel:     cancel,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Engine events reach the dashboard through the bridge.
	bridge := tui.NewEventBridge(p.Send)
	loop.Bus = devloop.Fanout(srv.Bus(), bridge)

	// The global logger would scribble over the alt screen; the dashboard's
	// event log takes over while the TUI runs.
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	g.Go(func() error { return loop.Run(gctx) })

	// Quit the TUI when the engines stop, whatever the reason.
	go func() {
		<-gctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()
	engineErr := g.Wait()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		return 1
	}
	if engineErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", engineErr)
		return 1
	}
	return 0
}
