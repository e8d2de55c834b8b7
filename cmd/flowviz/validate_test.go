// ABOUTME: Tests for the validate subcommand in file mode and whole-catalog mode.
// ABOUTME: Exit codes: errors fail the run, warnings and infos are advisory.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

// brokenGraphJSON has an edge pointing at a node that does not exist.
const brokenGraphJSON = `{
  "nodes": [
    {"id": "bb0", "block": 0, "stmts": [], "terminator": "switchInt(x)"}
  ],
  "edges": [
    {"source": "bb0", "target": "bb9", "label": "0"}
  ]
}`

// warningGraphJSON is valid but carries an unreachable block.
const warningGraphJSON = `{
  "nodes": [
    {"id": "bb0", "block": 0, "stmts": [], "terminator": "return"},
    {"id": "bb1", "block": 1, "stmts": [], "terminator": "return"}
  ],
  "edges": []
}`

func TestRunValidateCatalogAllValid(t *testing.T) {
	chdirTemp(t)
	writeGraph(t, "data", "alpha", validGraphJSON)
	writeGraph(t, "data", "beta", validGraphJSON)

	if got := runValidate(nil); got != 0 {
		t.Errorf("expected exit 0 for valid graphs, got %d", got)
	}
}

func TestRunValidateCatalogWithErrors(t *testing.T) {
	chdirTemp(t)
	writeGraph(t, "data", "alpha", validGraphJSON)
	writeGraph(t, "data", "broken", brokenGraphJSON)

	if got := runValidate(nil); got != 1 {
		t.Errorf("expected exit 1 when any graph has errors, got %d", got)
	}
}

func TestRunValidateWarningsDoNotFail(t *testing.T) {
	chdirTemp(t)
	writeGraph(t, "data", "alpha", warningGraphJSON)

	if got := runValidate(nil); got != 0 {
		t.Errorf("expected exit 0 for warnings only, got %d", got)
	}
}

func TestRunValidateUndecodableGraph(t *testing.T) {
	chdirTemp(t)
	writeGraph(t, "data", "garbage", "{not json")

	if got := runValidate(nil); got != 1 {
		t.Errorf("expected exit 1 for an undecodable graph, got %d", got)
	}
}

func TestRunValidateEmptyCatalog(t *testing.T) {
	chdirTemp(t)

	if got := runValidate(nil); got != 0 {
		t.Errorf("expected exit 0 for an empty data dir, got %d", got)
	}
}

func TestRunValidateSingleFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "mir.json")
	if err := os.WriteFile(path, []byte(validGraphJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := runValidate([]string{path}); got != 0 {
		t.Errorf("expected exit 0 for a valid file, got %d", got)
	}
}

func TestRunValidateSingleFileWithErrors(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "mir.json")
	if err := os.WriteFile(path, []byte(brokenGraphJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := runValidate([]string{path}); got != 1 {
		t.Errorf("expected exit 1 for a broken file, got %d", got)
	}
}

func TestRunValidateMissingFile(t *testing.T) {
	chdirTemp(t)

	if got := runValidate([]string{"no-such-file.json"}); got != 1 {
		t.Errorf("expected exit 1 for a missing file, got %d", got)
	}
}

func TestRunValidateMixedFiles(t *testing.T) {
	dir := chdirTemp(t)
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte(validGraphJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(brokenGraphJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := runValidate([]string{good, bad}); got != 1 {
		t.Errorf("expected exit 1 when any named file fails, got %d", got)
	}
}

func TestRunValidateCustomDataDir(t *testing.T) {
	chdirTemp(t)
	writeGraph(t, "out", "alpha", validGraphJSON)

	if got := runValidate([]string{"-data", "out"}); got != 0 {
		t.Errorf("expected exit 0, got %d", got)
	}
}
