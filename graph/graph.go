// ABOUTME: Core data model for per-function control flow graph dumps consumed by the browser UI.
// ABOUTME: Defines Graph, Node, and Edge wire types with JSON codec and traversal helpers.
package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Edge labels emitted by the analyzer. SwitchInt branches additionally carry
// bare decimal values as labels.
const (
	LabelGoto      = "goto"
	LabelDrop      = "drop"
	LabelCall      = "call"
	LabelUnwind    = "unwind"
	LabelSuccess   = "success"
	LabelReal      = "real"
	LabelOtherwise = "otherwise"
)

// Graph is one function's control flow graph as dumped by the analyzer.
// Node and edge order is preserved from the wire so re-encoding is stable.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a basic block. ID is the printable block name ("bb0"), Block the
// numeric index, Stmts the rendered statements, Terminator the rendered
// terminator.
type Node struct {
	ID         string   `json:"id"`
	Block      int      `json:"block"`
	Stmts      []string `json:"stmts"`
	Terminator string   `json:"terminator"`
}

// Edge is a directed edge between two basic blocks. Label carries the branch
// kind ("goto", "call", ...) or a switch discriminant value.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Decode reads one graph from r. A graph with no nodes is rejected: the
// analyzer always emits at least the entry block.
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	dec := json.NewDecoder(r)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decoding graph: %w", err)
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("decoding graph: no nodes")
	}
	return &g, nil
}

// Encode writes the graph to w as JSON, preserving node and edge order.
func (g *Graph) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	return nil
}

// FindNode returns the node with the given ID, or nil if not found.
func (g *Graph) FindNode(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// EntryNode returns the entry block (block 0), or nil if the graph has none.
func (g *Graph) EntryNode() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Block == 0 {
			return &g.Nodes[i]
		}
	}
	return nil
}

// OutgoingEdges returns all edges originating from the given node ID.
func (g *Graph) OutgoingEdges(nodeID string) []Edge {
	var result []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			result = append(result, e)
		}
	}
	return result
}

// IncomingEdges returns all edges terminating at the given node ID.
func (g *Graph) IncomingEdges(nodeID string) []Edge {
	var result []Edge
	for _, e := range g.Edges {
		if e.Target == nodeID {
			result = append(result, e)
		}
	}
	return result
}

// NodeIDs returns all node IDs ordered by block index for deterministic output.
func (g *Graph) NodeIDs() []string {
	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Block < nodes[j].Block })
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// Reachable returns the set of node IDs reachable from the entry block via
// BFS. An empty set means the graph has no entry block.
func (g *Graph) Reachable() map[string]bool {
	visited := make(map[string]bool)
	entry := g.EntryNode()
	if entry == nil {
		return visited
	}

	queue := []string{entry.ID}
	visited[entry.ID] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range g.OutgoingEdges(current) {
			if !visited[e.Target] {
				visited[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}
	return visited
}
