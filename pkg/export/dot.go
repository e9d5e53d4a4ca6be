package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/trackast/trackast/pkg/graph"
)

// ToDOT encodes g as Graphviz DOT, per spec §4.6: one node line per
// node (shape=box internal, shape=ellipse+dashed external), one edge
// line per edge labeled with its source line when nonzero.
func ToDOT(g *graph.CallGraph, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph CallGraph {"); err != nil {
		return err
	}

	for _, n := range SortedNodes(g) {
		style := "shape=box"
		if n.IsExternal {
			style = "shape=ellipse, style=dashed"
		}
		if _, err := fmt.Fprintf(w, "  %s [%s];\n", quoteDOT(string(n.ID)), style); err != nil {
			return err
		}
	}

	for _, e := range g.Edges {
		label := ""
		if e.Line > 0 {
			label = fmt.Sprintf(" [label=%q]", "L"+strconv.Itoa(e.Line))
		}
		if _, err := fmt.Fprintf(w, "  %s -> %s%s;\n", quoteDOT(string(e.From)), quoteDOT(string(e.To)), label); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// quoteDOT quotes a FunctionId as a DOT identifier, backslash-escaping
// any embedded quotes.
func quoteDOT(s string) string {
	escaped := strings.ReplaceAll(s, `"`, `\"`)
	return `"` + escaped + `"`
}
