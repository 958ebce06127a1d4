package summarizer

import (
	"encoding/json"
)

// JSONFormatter renders a Summary as indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format implements the Formatter interface.
func (f *JSONFormatter) Format(s *Summary) string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}\n"
	}
	return string(data) + "\n"
}

// NewFormatter returns the formatter for a summary format name.
// Unknown names fall back to Markdown.
func NewFormatter(format string, opts ...MarkdownOption) Formatter {
	if format == "json" {
		return NewJSONFormatter()
	}
	return NewMarkdownFormatter(opts...)
}

var _ Formatter = (*JSONFormatter)(nil)
