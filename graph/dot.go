// ABOUTME: Serializes control flow graphs into DOT digraph text for graphviz rendering.
// ABOUTME: Provides ToDOT and ToDOTWithFocus (fills one block for highlighting), deterministic output.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// focusFillColor is the fill used by ToDOTWithFocus for the highlighted block.
const focusFillColor = "#FFC107"

// ToDOT serializes the graph into valid DOT digraph text. Nodes are emitted
// in block order and edges in wire order, so output is reproducible. The name
// becomes the digraph name after quoting.
func ToDOT(g *Graph, name string) string {
	return toDOT(g, name, "")
}

// ToDOTWithFocus is ToDOT with one block filled so the UI can highlight the
// selected node in rendered output.
func ToDOTWithFocus(g *Graph, name, focusID string) string {
	return toDOT(g, name, focusID)
}

func toDOT(g *Graph, name, focusID string) string {
	if g == nil {
		return ""
	}
	if name == "" {
		name = "mir"
	}

	var buf strings.Builder

	fmt.Fprintf(&buf, "digraph %s {\n", quoteID(name))
	buf.WriteString("  rankdir=\"TB\"\n")
	buf.WriteString("  node [fontname=\"monospace\", shape=\"box\"]\n")

	// Nodes in block order for determinism
	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Block < nodes[j].Block })
	for _, n := range nodes {
		attrs := map[string]string{"label": nodeLabel(n)}
		if focusID != "" && n.ID == focusID {
			attrs["style"] = "filled"
			attrs["fillcolor"] = focusFillColor
		}
		fmt.Fprintf(&buf, "  %s [%s]\n", quoteID(n.ID), formatAttrs(attrs))
	}

	// Edges in wire order
	for _, e := range g.Edges {
		if e.Label == "" {
			fmt.Fprintf(&buf, "  %s -> %s\n", quoteID(e.Source), quoteID(e.Target))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%s]\n", quoteID(e.Source), quoteID(e.Target), quoteValue(e.Label))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeLabel renders a block header, its statements, and its terminator as a
// left-justified multi-line DOT label.
func nodeLabel(n Node) string {
	var lines []string
	lines = append(lines, n.ID)
	lines = append(lines, n.Stmts...)
	if n.Terminator != "" {
		lines = append(lines, n.Terminator)
	}
	return strings.Join(lines, "\\l") + "\\l"
}

// formatAttrs formats a map of attributes as a DOT attribute list.
func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, quoteValue(attrs[k])))
	}
	return strings.Join(parts, ", ")
}

// quoteID returns a DOT-safe identifier. Simple identifiers are returned
// as-is, anything else is quoted.
func quoteID(id string) string {
	for _, c := range id {
		if !isIDChar(c) {
			return quoteValue(id)
		}
	}
	return id
}

// quoteValue quotes a string for use as a DOT attribute value. Backslash
// sequences already present (statement labels use \l line breaks) are kept.
func quoteValue(v string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\n':
			buf.WriteString(`\l`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

// isIDChar returns true if the rune is valid in a bare DOT identifier.
func isIDChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
