// ABOUTME: Tests for bundler argument construction and invocation error paths.
// ABOUTME: Runs the real bundler only when it is installed, mirroring dev environments without it.
package bundle

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestArgs_DevelopmentDefaults(t *testing.T) {
	b := &Bundler{Entry: "src/index.tsx", Outfile: "dist/bundle.js", Sourcemap: true}

	got := b.Args()
	want := []string{"src/index.tsx", "--bundle", "--outfile=dist/bundle.js", "--sourcemap", "--color=false"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}
}

func TestArgs_Minify(t *testing.T) {
	b := &Bundler{Entry: "src/index.tsx", Outfile: "dist/bundle.js", Minify: true}

	args := strings.Join(b.Args(), " ")
	if !strings.Contains(args, "--minify") {
		t.Errorf("expected --minify in args: %s", args)
	}
	if strings.Contains(args, "--sourcemap") {
		t.Errorf("unexpected --sourcemap in args: %s", args)
	}
}

func TestArgs_DefinesSorted(t *testing.T) {
	b := &Bundler{
		Entry:   "src/index.tsx",
		Outfile: "dist/bundle.js",
		Define: map[string]string{
			"process.env.NODE_ENV": `"development"`,
			"DEBUG":                "true",
		},
	}

	args := b.Args()
	var defines []string
	for _, a := range args {
		if strings.HasPrefix(a, "--define:") {
			defines = append(defines, a)
		}
	}

	want := []string{
		`--define:DEBUG=true`,
		`--define:process.env.NODE_ENV="development"`,
	}
	if !reflect.DeepEqual(defines, want) {
		t.Errorf("defines = %v, want %v", defines, want)
	}
}

func TestCommandLine(t *testing.T) {
	b := &Bundler{Entry: "src/index.tsx", Outfile: "dist/bundle.js"}

	cl := b.CommandLine()
	if !strings.HasPrefix(cl, "esbuild src/index.tsx") {
		t.Errorf("unexpected command line: %s", cl)
	}
}

func TestBuild_RequiresEntryAndOutfile(t *testing.T) {
	ctx := context.Background()

	if _, err := (&Bundler{Outfile: "dist/bundle.js"}).Build(ctx); err == nil {
		t.Error("expected error for missing entry")
	}
	if _, err := (&Bundler{Entry: "src/index.tsx"}).Build(ctx); err == nil {
		t.Error("expected error for missing outfile")
	}
}

func TestBuild_MissingBundler(t *testing.T) {
	b := &Bundler{
		Command: "flowviz-test-no-such-bundler",
		Entry:   "src/index.tsx",
		Outfile: "dist/bundle.js",
	}

	_, err := b.Build(context.Background())
	if err == nil {
		t.Fatal("expected error for missing bundler binary")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got: %v", err)
	}

	if b.Available() {
		t.Error("Available should be false for missing binary")
	}
}

func TestBuild_WithRealBundler(t *testing.T) {
	b := &Bundler{Entry: "index.ts", Outfile: "out/bundle.js", Sourcemap: true}
	if !b.Available() {
		t.Skip("esbuild not installed, skipping bundler integration test")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.ts"), []byte("console.log('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	b.Dir = dir

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := b.Build(ctx)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Duration <= 0 {
		t.Error("expected positive duration")
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "bundle.js")); err != nil {
		t.Errorf("expected bundle output: %v", err)
	}
}

func TestBuild_FailureIncludesStderr(t *testing.T) {
	b := &Bundler{Entry: "missing.ts", Outfile: "out/bundle.js"}
	if !b.Available() {
		t.Skip("esbuild not installed, skipping bundler failure test")
	}

	b.Dir = t.TempDir()
	_, err := b.Build(context.Background())
	if err == nil {
		t.Fatal("expected error for missing entry file")
	}
	if !strings.Contains(err.Error(), "failed") {
		t.Errorf("expected failure detail, got: %v", err)
	}
}
