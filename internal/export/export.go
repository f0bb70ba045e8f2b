// Package export renders result graphs as JSON, YAML, Graphviz DOT or CSV.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/network"
	"gopkg.in/yaml.v3"
)

// Format names accepted by Write.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDOT  = "dot"
	FormatCSV  = "csv"
)

// Formats lists every supported format.
var Formats = []string{FormatJSON, FormatYAML, FormatDOT, FormatCSV}

// ErrUnknownFormat is returned for a format Write does not know.
var ErrUnknownFormat = errors.New("unknown export format")

// Document is the serialized form of a result graph.
type Document struct {
	Provenance model.Provenance   `json:"provenance" yaml:"provenance"`
	Status     model.GraphStatus  `json:"status" yaml:"status"`
	Nodes      []model.Node       `json:"nodes" yaml:"nodes"`
	Edges      []model.Edge       `json:"edges" yaml:"edges"`
	Stats      network.GraphStats `json:"stats" yaml:"stats"`
}

// NewDocument pairs graph with its provenance and statistics.
func NewDocument(graph *model.ResultGraph, provenance model.Provenance) Document {
	return Document{
		Provenance: provenance,
		Status:     graph.Status,
		Nodes:      graph.Nodes,
		Edges:      graph.Edges,
		Stats:      network.Summarize(graph),
	}
}

// Write renders graph to w in the named format.
func Write(w io.Writer, format string, graph *model.ResultGraph, provenance model.Provenance) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSON(w, graph, provenance)
	case FormatYAML, "yml":
		return YAML(w, graph, provenance)
	case FormatDOT:
		return DOT(w, graph, provenance)
	case FormatCSV:
		return CSV(w, graph, provenance)
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

// JSON writes an indented Document.
func JSON(w io.Writer, graph *model.ResultGraph, provenance model.Provenance) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(graph, provenance)); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// YAML writes a Document as YAML.
func YAML(w io.Writer, graph *model.ResultGraph, provenance model.Provenance) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(graph, provenance)); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
