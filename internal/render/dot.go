package render

import (
	"fmt"
	"strings"

	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/scene"
)

// ExportDOT returns doc as a Graphviz digraph. Each node is a record with
// its input ports on the left and output ports on the right; direct edges
// are dashed.
func ExportDOT(doc scene.Document) (string, error) {
	if err := scene.ValidateDocument(doc); err != nil {
		return "", err
	}

	owner := map[ident.ID]ident.ID{}
	for _, n := range doc.Nodes {
		for _, s := range n.Inputs {
			owner[s.ID] = n.ID
		}
		for _, s := range n.Outputs {
			owner[s.ID] = n.ID
		}
	}

	var b strings.Builder
	b.WriteString("digraph nodeweave {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=record, style=rounded];\n\n")

	for _, n := range doc.Nodes {
		fmt.Fprintf(&b, "  n%d [label=\"{{%s}|%s|{%s}}\"];\n",
			n.ID, ports(n.Inputs), recordEscape(n.Title), ports(n.Outputs))
	}

	b.WriteString("\n")
	for _, e := range doc.Edges {
		attrs := fmt.Sprintf("id=\"e%d\"", e.ID)
		if e.Kind == scene.Direct {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&b, "  n%d:s%d -> n%d:s%d [%s];\n",
			owner[e.Start], e.Start, owner[e.End], e.End, attrs)
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func ports(sockets []scene.SocketDoc) string {
	parts := make([]string, len(sockets))
	for i, s := range sockets {
		parts[i] = fmt.Sprintf("<s%d> %d", s.ID, s.Kind)
	}
	return strings.Join(parts, "|")
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"{", `\{`,
	"}", `\}`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
	"\n", `\n`,
)

func recordEscape(s string) string {
	if s == "" {
		return " "
	}
	return recordEscaper.Replace(s)
}
