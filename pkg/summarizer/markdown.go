package summarizer

import (
	"fmt"
	"sort"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion sets the version shown in the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Decode Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))

	// Stream
	fmt.Fprintf(&b, "## %s\n\n", t("Stream"))
	f.tableHeader(&b)
	f.row(&b, "Input", s.Input.Path)
	f.row(&b, "Input Size", formatBytes(s.Input.Bytes))
	f.row(&b, "NAL Units", fmt.Sprintf("%d", s.Stream.Units))
	for _, name := range sortedKeys(s.Stream.Counts) {
		fmt.Fprintf(&b, "| %s | %d |\n", name, s.Stream.Counts[name])
	}
	if s.Stream.Empty > 0 {
		f.row(&b, "Empty Units", fmt.Sprintf("%d", s.Stream.Empty))
	}
	if s.Stream.Width > 0 && s.Stream.Height > 0 {
		f.row(&b, "Dimensions", fmt.Sprintf("%dx%d", s.Stream.Width, s.Stream.Height))
		f.row(&b, "Profile / Level", fmt.Sprintf("%d / %d", s.Stream.Profile, s.Stream.Level))
	}
	b.WriteString("\n")

	// Decode
	fmt.Fprintf(&b, "## %s\n\n", t("Decode"))
	f.tableHeader(&b)
	f.row(&b, "Backend", orNone(t, s.Decode.Backend))
	f.row(&b, "Pixel Format", orNone(t, s.Decode.PixelFormat))
	f.row(&b, "Submitted Access Units", fmt.Sprintf("%d", s.Decode.Submitted))
	f.row(&b, "Submitted Bytes", formatBytes(s.Decode.SubmitBytes))
	f.row(&b, "Decoded Pictures", fmt.Sprintf("%d", s.Decode.Pictures))
	f.row(&b, "No Picture", fmt.Sprintf("%d", s.Decode.NoPicture))
	f.row(&b, "Decode Failures", fmt.Sprintf("%d", s.Decode.Failures))
	if s.Decode.LateFrames > 0 {
		f.row(&b, "Late Pictures", fmt.Sprintf("%d", s.Decode.LateFrames))
	}
	b.WriteString("\n")

	// Output
	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	f.tableHeader(&b)
	f.row(&b, "Output", s.Output.Path)
	f.row(&b, "Frames Written", fmt.Sprintf("%d", s.Output.FramesWritten))
	f.row(&b, "Bytes Written", formatBytes(s.Output.BytesWritten))
	f.row(&b, "Write Errors", fmt.Sprintf("%d", s.Output.WriteErrors))
	padding := t("Included")
	if s.Output.TrimPadding {
		padding = t("Trimmed")
	}
	f.row(&b, "Row Padding", padding)

	if f.version != "" {
		fmt.Fprintf(&b, "\n---\n%s annexdec %s\n", t("Generated by"), f.version)
	}

	return b.String()
}

func (f *MarkdownFormatter) tableHeader(b *strings.Builder) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	b.WriteString("|------|-------|\n")
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate(label), value)
}

func orNone(t func(string) string, s string) string {
	if s == "" {
		return t("None")
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
