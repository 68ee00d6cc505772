package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how commands render their results.
type OutputFormat string

const (
	// OutputFormatText is the default human-readable format.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON renders results as indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML renders results as YAML with the JSON field names.
	OutputFormatYAML OutputFormat = "yaml"
)

// OutputWriter renders command results in the selected format.
type OutputWriter struct {
	format OutputFormat
	writer io.Writer
}

// NewOutputWriter creates a new OutputWriter. A nil writer means os.Stdout.
func NewOutputWriter(format OutputFormat, w io.Writer) *OutputWriter {
	if w == nil {
		w = os.Stdout
	}
	return &OutputWriter{format: format, writer: w}
}

// Write renders data in a structured format, or calls textFunc for text.
func (o *OutputWriter) Write(data any, textFunc func()) error {
	switch o.format {
	case OutputFormatJSON:
		return o.WriteJSON(data)
	case OutputFormatYAML:
		return o.WriteYAML(data)
	default:
		textFunc()
		return nil
	}
}

// WriteJSON writes data as indented JSON.
func (o *OutputWriter) WriteJSON(data any) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as block-style YAML. Field names and order follow the
// JSON encoding of data.
func (o *OutputWriter) WriteYAML(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to convert output to YAML: %w", err)
	}
	clearStyle(&doc)

	encoder := yaml.NewEncoder(o.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return err
	}
	return encoder.Close()
}

// clearStyle drops the flow and quoting styles inherited from JSON.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		clearStyle(child)
	}
}

// IsStructured reports whether results are rendered as data rather than text.
func (o *OutputWriter) IsStructured() bool {
	return o.format != OutputFormatText
}

// ParseOutputFormat parses the --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatText, "":
		return OutputFormatText, nil
	case OutputFormatJSON:
		return OutputFormatJSON, nil
	case OutputFormatYAML, "yml":
		return OutputFormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format %q: must be 'text', 'json' or 'yaml'", s)
	}
}
