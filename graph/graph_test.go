// ABOUTME: Tests for the control flow graph wire model: JSON codec and traversal helpers.
// ABOUTME: Uses analyzer-shaped fixtures (bb<N> ids, switch/goto/return terminators).
package graph

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

// diamondGraph returns a small branch-and-join graph:
// bb0 switches to bb1/bb2, both goto bb3, bb3 returns.
func diamondGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "bb0", Block: 0, Stmts: []string{"_1 = const 5", "_2 = _1 > const 3"}, Terminator: "SwitchInt { discr: _2 }"},
			{ID: "bb1", Block: 1, Stmts: []string{"_3 = const 1"}, Terminator: "Goto { target: bb3 }"},
			{ID: "bb2", Block: 2, Stmts: []string{"_3 = const 2"}, Terminator: "Goto { target: bb3 }"},
			{ID: "bb3", Block: 3, Stmts: nil, Terminator: "Return"},
		},
		Edges: []Edge{
			{Source: "bb0", Target: "bb1", Label: "0"},
			{Source: "bb0", Target: "bb2", Label: "otherwise"},
			{Source: "bb1", Target: "bb3", Label: "goto"},
			{Source: "bb2", Target: "bb3", Label: "goto"},
		},
	}
}

func TestDecode(t *testing.T) {
	input := `{
		"nodes": [
			{"id": "bb0", "block": 0, "stmts": ["_1 = const 5"], "terminator": "Goto { target: bb1 }"},
			{"id": "bb1", "block": 1, "stmts": [], "terminator": "Return"}
		],
		"edges": [
			{"source": "bb0", "target": "bb1", "label": "goto"}
		]
	}`

	g, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(g.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Errorf("expected 1 edge, got %d", len(g.Edges))
	}
	if g.Nodes[0].ID != "bb0" || g.Nodes[0].Block != 0 {
		t.Errorf("unexpected first node: %+v", g.Nodes[0])
	}
	if g.Nodes[0].Stmts[0] != "_1 = const 5" {
		t.Errorf("unexpected stmt: %q", g.Nodes[0].Stmts[0])
	}
	if g.Edges[0].Label != "goto" {
		t.Errorf("unexpected edge label: %q", g.Edges[0].Label)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty nodes", `{"nodes": [], "edges": []}`},
		{"missing nodes", `{"edges": []}`},
		{"not json", `digraph {}`},
		{"truncated", `{"nodes": [{"id": "bb0"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	g := diamondGraph()

	var buf bytes.Buffer
	if err := g.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !reflect.DeepEqual(g.Nodes, got.Nodes) {
		t.Errorf("nodes changed across round trip:\nbefore: %+v\nafter:  %+v", g.Nodes, got.Nodes)
	}
	if !reflect.DeepEqual(g.Edges, got.Edges) {
		t.Errorf("edges changed across round trip:\nbefore: %+v\nafter:  %+v", g.Edges, got.Edges)
	}
}

func TestEncode_FieldNames(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "bb0", Block: 0, Stmts: []string{}, Terminator: "Return"}},
	}

	var buf bytes.Buffer
	if err := g.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := buf.String()
	for _, key := range []string{`"nodes"`, `"edges"`, `"id"`, `"block"`, `"stmts"`, `"terminator"`} {
		if !strings.Contains(out, key) {
			t.Errorf("encoded graph missing %s: %s", key, out)
		}
	}
}

func TestFindNode(t *testing.T) {
	g := diamondGraph()

	n := g.FindNode("bb2")
	if n == nil {
		t.Fatal("expected to find bb2")
	}
	if n.Block != 2 {
		t.Errorf("expected block 2, got %d", n.Block)
	}

	if g.FindNode("bb99") != nil {
		t.Error("expected nil for missing node")
	}
}

func TestEntryNode(t *testing.T) {
	g := diamondGraph()

	entry := g.EntryNode()
	if entry == nil {
		t.Fatal("expected an entry node")
	}
	if entry.ID != "bb0" {
		t.Errorf("expected bb0, got %q", entry.ID)
	}

	noEntry := &Graph{Nodes: []Node{{ID: "bb5", Block: 5, Terminator: "Return"}}}
	if noEntry.EntryNode() != nil {
		t.Error("expected nil entry for graph without block 0")
	}
}

func TestOutgoingIncomingEdges(t *testing.T) {
	g := diamondGraph()

	out := g.OutgoingEdges("bb0")
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing edges from bb0, got %d", len(out))
	}
	if out[0].Label != "0" || out[1].Label != "otherwise" {
		t.Errorf("unexpected outgoing labels: %q, %q", out[0].Label, out[1].Label)
	}

	in := g.IncomingEdges("bb3")
	if len(in) != 2 {
		t.Fatalf("expected 2 incoming edges to bb3, got %d", len(in))
	}

	if got := g.OutgoingEdges("bb3"); len(got) != 0 {
		t.Errorf("expected no outgoing edges from bb3, got %d", len(got))
	}
}

func TestNodeIDs_SortedByBlock(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "bb2", Block: 2},
			{ID: "bb0", Block: 0},
			{ID: "bb10", Block: 10},
			{ID: "bb1", Block: 1},
		},
	}

	got := g.NodeIDs()
	want := []string{"bb0", "bb1", "bb2", "bb10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NodeIDs = %v, want %v", got, want)
	}
}

func TestReachable(t *testing.T) {
	g := diamondGraph()
	g.Nodes = append(g.Nodes, Node{ID: "bb4", Block: 4, Terminator: "Return"})

	visited := g.Reachable()
	for _, id := range []string{"bb0", "bb1", "bb2", "bb3"} {
		if !visited[id] {
			t.Errorf("expected %s to be reachable", id)
		}
	}
	if visited["bb4"] {
		t.Error("expected bb4 to be unreachable")
	}
}

func TestReachable_NoEntry(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "bb7", Block: 7, Terminator: "Return"}}}
	if got := g.Reachable(); len(got) != 0 {
		t.Errorf("expected empty reachable set, got %v", got)
	}
}
