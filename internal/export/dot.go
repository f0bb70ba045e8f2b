package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/model"
)

// DOT writes graph as a Graphviz digraph. Unknown organizations are dashed,
// the root is doubled, and the query is embedded as a comment.
func DOT(w io.Writer, graph *model.ResultGraph, provenance model.Provenance) error {
	bw := bufio.NewWriter(w)
	q := provenance.Query

	fmt.Fprintf(bw, "// generated by %s at %s\n", provenance.Generator, provenance.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(bw, "// query: root=%s depth=%d min_amount=%s years=%s status=%s\n",
		escapeComment(q.RootIdentifier), q.MaxDepth,
		strconv.FormatFloat(q.MinAmount, 'f', -1, 64), yearsLabel(q.AllowedYears), graph.Status)
	bw.WriteString("digraph GrantNetwork {\n")
	bw.WriteString("  rankdir=LR;\n")
	bw.WriteString("  node [shape=box fontname=\"Helvetica\" fontsize=10];\n")
	bw.WriteString("  edge [fontname=\"Helvetica\" fontsize=8];\n\n")

	for _, n := range graph.Nodes {
		attrs := []string{fmt.Sprintf("label=\"%s\\n%s\"", escapeLabel(n.Name), ein.Format(n.ID))}
		if !n.Known {
			attrs = append(attrs, "style=dashed")
		}
		if n.Depth == 0 {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(bw, "  \"%s\" [%s];\n", n.ID, strings.Join(attrs, " "))
	}
	if len(graph.Nodes) > 0 {
		bw.WriteString("\n")
	}

	for _, e := range graph.Edges {
		label := "$" + strconv.FormatFloat(e.Amount, 'f', 2, 64)
		if e.Year != 0 {
			label += fmt.Sprintf(" (%d)", e.Year)
		}
		fmt.Fprintf(bw, "  \"%s\" -> \"%s\" [label=\"%s\"];\n", e.From, e.To, label)
	}

	bw.WriteString("}\n")
	return bw.Flush()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeComment(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

func yearsLabel(years []int) string {
	if len(years) == 0 {
		return "all"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}
