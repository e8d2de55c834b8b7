// ABOUTME: Help display for the flowviz CLI with grouped flags, examples, and tool status.
// ABOUTME: Provides printHelp for polished usage output and toolStatus for PATH detection.
package main

import (
	"fmt"
	"io"
	"os/exec"
)

const flowvizASCII = `
          .-----.
          | bb0 |
          '-----'
         0 /   \ 1
          v     v
     .-----. .-----.
     | bb1 | | bb2 |
     '-----' '-----'
           \   /
            v v
          .-----.
          | bb3 |
          '-----'
`

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples, and bundler/renderer tool status.
func printHelp(w io.Writer, ver string) {
	fmt.Fprint(w, flowvizASCII)
	fmt.Fprintf(w, "flowviz %s — dev toolchain for the control flow graph viewer\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  flowviz serve [flags]        Serve the front-end with caching disabled")
	fmt.Fprintln(w, "  flowviz watch [flags]        Rebuild the bundle when sources change")
	fmt.Fprintln(w, "  flowviz build [flags]        Run the bundler once in development mode")
	fmt.Fprintln(w, "  flowviz dev [flags]          Serve and watch together, with live reload")
	fmt.Fprintln(w, "  flowviz index [flags]        Rescan the data directory, rewrite functions.json")
	fmt.Fprintln(w, "  flowviz validate [file...]   Lint graph dumps before the browser sees them")
	fmt.Fprintln(w, "  flowviz help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Serve Flags:")
	fmt.Fprintln(w, "  -host <addr>          Listen host (default: 127.0.0.1)")
	fmt.Fprintln(w, "  -port <port>          Listen port (default: 8080)")
	fmt.Fprintln(w, "  -root <dir>           Static file root (default: .)")
	fmt.Fprintln(w, "  -data <dir>           Analyzer output directory (default: data)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Watch Flags:")
	fmt.Fprintln(w, "  -path <dir>           Directory to watch, repeatable (default: src)")
	fmt.Fprintln(w, "  -ext <list>           Comma-separated extensions (default: .tsx)")
	fmt.Fprintln(w, "  -debounce <dur>       Quiet period before rebuilding (default: 250ms)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Build Flags:")
	fmt.Fprintln(w, "  -entry <file>         Bundle entry point (default: src/index.tsx)")
	fmt.Fprintln(w, "  -outfile <file>       Bundle output file (default: dist/bundle.js)")
	fmt.Fprintln(w, "  -bundler <cmd>        Bundler executable (default: esbuild)")
	fmt.Fprintln(w, "  -sourcemap            Emit a sourcemap (default: true)")
	fmt.Fprintln(w, "  -minify               Minify the bundle (default: false)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -config <file>        Config file (default: ./flowviz.yaml when present)")
	fmt.Fprintln(w, "  -tui                  Terminal dashboard for dev mode")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  flowviz dev")
	fmt.Fprintln(w, "  flowviz dev -tui -port 3000")
	fmt.Fprintln(w, "  flowviz watch -ext .tsx,.ts -debounce 500ms")
	fmt.Fprintln(w, "  flowviz build -minify -outfile dist/app.js")
	fmt.Fprintln(w, "  flowviz validate data/main/mir.json")
	fmt.Fprintln(w, "  flowviz serve -root dist -port 9000")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Tools:")
	fmt.Fprintf(w, "  esbuild               %s (build, watch, dev)\n", toolStatus("esbuild"))
	fmt.Fprintf(w, "  dot                   %s (optional: svg/png rendering)\n", toolStatus("dot"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Docs: https://github.com/cfglab/flowviz")
}

// toolStatus returns "[found]" if the named executable is on PATH, or
// "[not found]" otherwise.
func toolStatus(name string) string {
	if _, err := exec.LookPath(name); err != nil {
		return "[not found]"
	}
	return "[found]"
}
