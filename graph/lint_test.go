// ABOUTME: Tests for control flow graph lint rules covering structure and edge consistency.
// ABOUTME: Each rule gets a broken fixture plus a clean-graph case asserting no errors.
package graph

import (
	"testing"
)

// hasDiag checks if any diagnostic matches the given rule and severity.
func hasDiag(diags []Diagnostic, rule, severity string) bool {
	for _, d := range diags {
		if d.Rule == rule && d.Severity == severity {
			return true
		}
	}
	return false
}

func TestLint_CleanGraph(t *testing.T) {
	diags := Lint(diamondGraph())

	for _, d := range diags {
		t.Errorf("unexpected diagnostic on clean graph: rule=%s severity=%s message=%s", d.Rule, d.Severity, d.Message)
	}
}

func TestLint_MissingEntryBlock(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "bb1", Block: 1, Terminator: "Return"}},
	}

	diags := Lint(g)
	if !hasDiag(diags, "entry_block", "error") {
		t.Errorf("expected entry_block error, got: %v", diags)
	}
}

func TestLint_DuplicateNode(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "bb0", Block: 0, Terminator: "Return"},
			{ID: "bb0", Block: 0, Terminator: "Return"},
		},
	}

	diags := Lint(g)
	if !hasDiag(diags, "duplicate_node", "error") {
		t.Errorf("expected duplicate_node error, got: %v", diags)
	}
}

func TestLint_NodeIDFormat(t *testing.T) {
	tests := []struct {
		name string
		node Node
	}{
		{"no bb prefix", Node{ID: "block0", Block: 0, Terminator: "Return"}},
		{"mismatched index", Node{ID: "bb3", Block: 1, Terminator: "Return"}},
		{"non numeric", Node{ID: "bbX", Block: 0, Terminator: "Return"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Graph{Nodes: []Node{{ID: "bb0", Block: 0, Terminator: "Return"}, tt.node}}
			diags := Lint(g)
			if !hasDiag(diags, "node_id_format", "error") {
				t.Errorf("expected node_id_format error, got: %v", diags)
			}
		})
	}
}

func TestLint_EdgeEndpoint(t *testing.T) {
	g := diamondGraph()
	g.Edges = append(g.Edges, Edge{Source: "bb3", Target: "bb42", Label: "goto"})

	diags := Lint(g)
	if !hasDiag(diags, "edge_endpoint", "error") {
		t.Errorf("expected edge_endpoint error, got: %v", diags)
	}

	found := false
	for _, d := range diags {
		if d.Rule == "edge_endpoint" && d.EdgeID == "bb3->bb42" {
			found = true
		}
	}
	if !found {
		t.Error("expected edge_endpoint diagnostic with EdgeID=bb3->bb42")
	}
}

func TestLint_Unreachable(t *testing.T) {
	g := diamondGraph()
	g.Nodes = append(g.Nodes, Node{ID: "bb4", Block: 4, Terminator: "Return"})

	diags := Lint(g)
	if !hasDiag(diags, "unreachable", "warning") {
		t.Errorf("expected unreachable warning, got: %v", diags)
	}

	found := false
	for _, d := range diags {
		if d.Rule == "unreachable" && d.NodeID == "bb4" {
			found = true
		}
	}
	if !found {
		t.Error("expected unreachable diagnostic with NodeID=bb4")
	}
}

func TestLint_DanglingBlock(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "bb0", Block: 0, Terminator: "Goto { target: bb1 }"},
			{ID: "bb1", Block: 1, Terminator: "Return"},
		},
		// bb0's goto edge is missing from the dump.
	}

	diags := Lint(g)
	if !hasDiag(diags, "dangling_block", "warning") {
		t.Errorf("expected dangling_block warning, got: %v", diags)
	}
}

func TestLint_TerminalBlocksNotDangling(t *testing.T) {
	terminators := []string{"Return", "Unreachable", "UnwindResume", "return", "resume"}

	for _, term := range terminators {
		g := &Graph{
			Nodes: []Node{{ID: "bb0", Block: 0, Terminator: term}},
		}
		diags := Lint(g)
		if hasDiag(diags, "dangling_block", "warning") {
			t.Errorf("terminator %q should not be flagged as dangling", term)
		}
	}
}

func TestLint_SwitchMissingOtherwise(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "bb0", Block: 0, Terminator: "SwitchInt { discr: _1 }"},
			{ID: "bb1", Block: 1, Terminator: "Return"},
			{ID: "bb2", Block: 2, Terminator: "Return"},
		},
		Edges: []Edge{
			{Source: "bb0", Target: "bb1", Label: "0"},
			{Source: "bb0", Target: "bb2", Label: "1"},
		},
	}

	diags := Lint(g)
	if !hasDiag(diags, "switch_otherwise", "warning") {
		t.Errorf("expected switch_otherwise warning, got: %v", diags)
	}

	g.Edges = append(g.Edges, Edge{Source: "bb0", Target: "bb2", Label: "otherwise"})
	diags = Lint(g)
	if hasDiag(diags, "switch_otherwise", "warning") {
		t.Errorf("otherwise edge present, expected no warning, got: %v", diags)
	}
}

func TestLint_DuplicateEdge(t *testing.T) {
	g := diamondGraph()
	g.Edges = append(g.Edges, Edge{Source: "bb1", Target: "bb3", Label: "goto"})

	diags := Lint(g)
	if !hasDiag(diags, "duplicate_edge", "info") {
		t.Errorf("expected duplicate_edge info, got: %v", diags)
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors([]Diagnostic{{Severity: "warning", Rule: "unreachable"}}) {
		t.Error("warnings alone should not count as errors")
	}
	if !HasErrors([]Diagnostic{{Severity: "error", Rule: "entry_block"}}) {
		t.Error("expected HasErrors to report true")
	}
	if HasErrors(nil) {
		t.Error("expected HasErrors(nil) to be false")
	}
}
