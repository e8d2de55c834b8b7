// ABOUTME: Structural lint rules for control flow graph dumps before they reach the browser.
// ABOUTME: Provides a single Lint(g) function that runs all checks and returns diagnostics.
package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Diagnostic represents a validation finding associated with a node or edge.
type Diagnostic struct {
	Severity string // "error", "warning", "info"
	Message  string
	NodeID   string
	EdgeID   string
	Rule     string
}

// terminalPrefixes match terminator strings of blocks that legitimately have
// no outgoing edges.
var terminalPrefixes = []string{
	"return",
	"unreachable",
	"unwindresume",
	"resume",
	"unwindterminate",
	"abort",
}

// Lint runs all lint rules on the graph and returns any diagnostics found.
// Errors mean the front-end cannot render the graph; warnings mean it can but
// the data looks suspicious.
func Lint(g *Graph) []Diagnostic {
	var diags []Diagnostic

	diags = append(diags, checkEntryBlock(g)...)
	diags = append(diags, checkDuplicateNodes(g)...)
	diags = append(diags, checkNodeIDFormat(g)...)
	diags = append(diags, checkEdgeEndpoints(g)...)
	diags = append(diags, checkReachability(g)...)
	diags = append(diags, checkDanglingBlocks(g)...)
	diags = append(diags, checkSwitchOtherwise(g)...)
	diags = append(diags, checkDuplicateEdges(g)...)

	return diags
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == "error" {
			return true
		}
	}
	return false
}

// isTerminalTerminator returns true if the terminator string marks a block
// that ends the function. The analyzer emits Rust debug forms ("Return",
// "UnwindResume"), so matching is case-insensitive on the leading word.
func isTerminalTerminator(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	for _, p := range terminalPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// checkEntryBlock verifies the graph has a block 0 to start rendering from.
func checkEntryBlock(g *Graph) []Diagnostic {
	if g.EntryNode() != nil {
		return nil
	}
	return []Diagnostic{{
		Severity: "error",
		Message:  "graph has no entry block (block 0)",
		Rule:     "entry_block",
	}}
}

// checkDuplicateNodes flags node IDs that appear more than once.
func checkDuplicateNodes(g *Graph) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if seen[n.ID] {
			diags = append(diags, Diagnostic{
				Severity: "error",
				Message:  fmt.Sprintf("node %q declared more than once", n.ID),
				NodeID:   n.ID,
				Rule:     "duplicate_node",
			})
			continue
		}
		seen[n.ID] = true
	}
	return diags
}

// checkNodeIDFormat verifies each node ID is "bb<N>" where N matches Block.
func checkNodeIDFormat(g *Graph) []Diagnostic {
	var diags []Diagnostic
	for _, n := range g.Nodes {
		rest, ok := strings.CutPrefix(n.ID, "bb")
		if !ok {
			diags = append(diags, Diagnostic{
				Severity: "error",
				Message:  fmt.Sprintf("node %q does not follow the bb<N> naming scheme", n.ID),
				NodeID:   n.ID,
				Rule:     "node_id_format",
			})
			continue
		}
		num, err := strconv.Atoi(rest)
		if err != nil || num != n.Block {
			diags = append(diags, Diagnostic{
				Severity: "error",
				Message:  fmt.Sprintf("node %q does not match its block index %d", n.ID, n.Block),
				NodeID:   n.ID,
				Rule:     "node_id_format",
			})
		}
	}
	return diags
}

// checkEdgeEndpoints verifies every edge references existing nodes.
func checkEdgeEndpoints(g *Graph) []Diagnostic {
	var diags []Diagnostic
	for _, e := range g.Edges {
		if g.FindNode(e.Source) == nil {
			diags = append(diags, Diagnostic{
				Severity: "error",
				Message:  fmt.Sprintf("edge source %q does not exist", e.Source),
				EdgeID:   e.Source + "->" + e.Target,
				Rule:     "edge_endpoint",
			})
		}
		if g.FindNode(e.Target) == nil {
			diags = append(diags, Diagnostic{
				Severity: "error",
				Message:  fmt.Sprintf("edge target %q does not exist", e.Target),
				EdgeID:   e.Source + "->" + e.Target,
				Rule:     "edge_endpoint",
			})
		}
	}
	return diags
}

// checkReachability performs BFS from the entry block and flags unreachable nodes.
func checkReachability(g *Graph) []Diagnostic {
	if g.EntryNode() == nil {
		return nil
	}

	visited := g.Reachable()

	var diags []Diagnostic
	for _, id := range g.NodeIDs() {
		if !visited[id] {
			diags = append(diags, Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("node %q is not reachable from the entry block", id),
				NodeID:   id,
				Rule:     "unreachable",
			})
		}
	}
	return diags
}

// checkDanglingBlocks flags nodes whose terminator continues somewhere but
// which have no outgoing edges.
func checkDanglingBlocks(g *Graph) []Diagnostic {
	var diags []Diagnostic
	for _, id := range g.NodeIDs() {
		n := g.FindNode(id)
		if n == nil || isTerminalTerminator(n.Terminator) {
			continue
		}
		if len(g.OutgoingEdges(id)) == 0 {
			diags = append(diags, Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("node %q has a non-terminal terminator but no outgoing edges", id),
				NodeID:   id,
				Rule:     "dangling_block",
			})
		}
	}
	return diags
}

// checkSwitchOtherwise flags switch-shaped nodes (two or more numeric branch
// labels) that are missing the otherwise fallback edge.
func checkSwitchOtherwise(g *Graph) []Diagnostic {
	var diags []Diagnostic
	for _, id := range g.NodeIDs() {
		numeric := 0
		hasOtherwise := false
		for _, e := range g.OutgoingEdges(id) {
			if e.Label == LabelOtherwise {
				hasOtherwise = true
				continue
			}
			if _, err := strconv.ParseInt(e.Label, 10, 64); err == nil {
				numeric++
			}
		}
		if numeric >= 2 && !hasOtherwise {
			diags = append(diags, Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("node %q switches on %d values but has no otherwise edge", id, numeric),
				NodeID:   id,
				Rule:     "switch_otherwise",
			})
		}
	}
	return diags
}

// checkDuplicateEdges flags edges sharing source, target, and label.
func checkDuplicateEdges(g *Graph) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		key := e.Source + "->" + e.Target + "#" + e.Label
		if seen[key] {
			diags = append(diags, Diagnostic{
				Severity: "info",
				Message:  fmt.Sprintf("duplicate edge %s -> %s with label %q", e.Source, e.Target, e.Label),
				EdgeID:   e.Source + "->" + e.Target,
				Rule:     "duplicate_edge",
			})
			continue
		}
		seen[key] = true
	}
	return diags
}
