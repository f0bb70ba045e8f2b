package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/grantflow/internal/model"
)

// CSVHeader is the column row of the edge list.
var CSVHeader = []string{"filer_ein", "filer_name", "grant_ein", "grant_name", "grant_amt", "tax_year"}

// CSV writes the drawn grants as an edge list. Provenance is written as
// leading "#" comment lines, readable with csv.Reader.Comment = '#'.
func CSV(w io.Writer, graph *model.ResultGraph, provenance model.Provenance) error {
	bw := bufio.NewWriter(w)
	q := provenance.Query
	fmt.Fprintf(bw, "# generated_at=%s generator=%s id=%s\n",
		provenance.GeneratedAt.Format(time.RFC3339), provenance.Generator, provenance.ID)
	fmt.Fprintf(bw, "# root=%s depth=%d min_amount=%s years=%s status=%s\n",
		escapeComment(q.RootIdentifier), q.MaxDepth,
		strconv.FormatFloat(q.MinAmount, 'f', -1, 64), yearsLabel(q.AllowedYears), graph.Status)

	names := make(map[string]string, len(graph.Nodes))
	for _, n := range graph.Nodes {
		names[n.ID] = n.Name
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range graph.Edges {
		year := ""
		if e.Year != 0 {
			year = strconv.Itoa(e.Year)
		}
		record := []string{
			e.From, names[e.From],
			e.To, names[e.To],
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
			year,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return bw.Flush()
}
