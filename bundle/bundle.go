// ABOUTME: Invokes the external module bundler (esbuild) to produce the browser bundle.
// ABOUTME: Development mode by default: bundle with sourcemap, no minification unless asked.
package bundle

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// DefaultCommand is the bundler binary used when none is configured.
const DefaultCommand = "esbuild"

// Bundler describes one bundler invocation. The zero value is not usable;
// Entry and Outfile are required.
type Bundler struct {
	Command   string            // bundler binary, DefaultCommand when empty
	Dir       string            // working directory for relative paths
	Entry     string            // entry point, e.g. src/index.tsx
	Outfile   string            // output path, e.g. dist/bundle.js
	Sourcemap bool              // emit a source map next to the bundle
	Minify    bool              // production-style output, off in development
	Define    map[string]string // --define substitutions
}

// Result describes one completed bundler run.
type Result struct {
	Outfile  string
	Duration time.Duration
	Stdout   string
	Stderr   string
}

// Build runs the bundler once and waits for it to finish. The bundler's
// stderr is folded into the returned error on failure.
func (b *Bundler) Build(ctx context.Context) (*Result, error) {
	if b.Entry == "" {
		return nil, fmt.Errorf("bundler entry point not set")
	}
	if b.Outfile == "" {
		return nil, fmt.Errorf("bundler outfile not set")
	}

	command := b.command()
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("bundler %q not found: install it or set build.bundler: %w", command, err)
	}

	cmd := exec.CommandContext(ctx, command, b.Args()...)
	cmd.Dir = b.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("bundler %s failed: %w: %s", command, err, strings.TrimSpace(stderr.String()))
	}

	return &Result{
		Outfile:  b.Outfile,
		Duration: time.Since(start),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Args returns the bundler argv (without the command itself). Define keys are
// sorted so the command line is reproducible.
func (b *Bundler) Args() []string {
	args := []string{b.Entry, "--bundle", "--outfile=" + b.Outfile}
	if b.Sourcemap {
		args = append(args, "--sourcemap")
	}
	if b.Minify {
		args = append(args, "--minify")
	}

	keys := make([]string, 0, len(b.Define))
	for k := range b.Define {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("--define:%s=%s", k, b.Define[k]))
	}

	args = append(args, "--color=false")
	return args
}

// CommandLine returns the full invocation for logging.
func (b *Bundler) CommandLine() string {
	return b.command() + " " + strings.Join(b.Args(), " ")
}

// Available reports whether the configured bundler binary is on PATH.
func (b *Bundler) Available() bool {
	_, err := exec.LookPath(b.command())
	return err == nil
}

func (b *Bundler) command() string {
	if b.Command != "" {
		return b.Command
	}
	return DefaultCommand
}
