package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// ValidOutput reports whether f is a known output format
func ValidOutput(f string) bool {
	switch f {
	case OutputTable, OutputJSON, OutputYAML:
		return true
	}
	return false
}

// Printer writes command results as a table or as structured data
type Printer struct {
	Out    io.Writer
	Format string
	Styles *Styles
}

// NewPrinter creates a printer
func NewPrinter(out io.Writer, format string, color bool) *Printer {
	if format == "" {
		format = OutputTable
	}
	return &Printer{Out: out, Format: format, Styles: NewStyles(out, color)}
}

// Structured reports whether data is printed as JSON or YAML instead of a table
func (p *Printer) Structured() bool {
	return p.Format == OutputJSON || p.Format == OutputYAML
}

// Print writes data in the structured format, or calls table for the table format
func (p *Printer) Print(data any, table func(t *Table)) error {
	switch p.Format {
	case OutputJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case OutputYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(toPlain(data)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		t := p.NewTable()
		table(t)
		return t.Flush()
	}
}

// toPlain converts data through JSON so YAML output uses the API's field names
func toPlain(data any) any {
	raw, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return data
	}
	return plain
}

// Println writes a line in table mode; structured output stays machine readable
func (p *Printer) Println(a ...any) {
	if p.Structured() {
		return
	}
	fmt.Fprintln(p.Out, a...)
}

// Printf writes formatted text in table mode
func (p *Printer) Printf(format string, a ...any) {
	if p.Structured() {
		return
	}
	fmt.Fprintf(p.Out, format, a...)
}

// Table is an aligned text table
type Table struct {
	w *tabwriter.Writer
}

// NewTable starts a table on the printer's output
func (p *Printer) NewTable() *Table {
	return &Table{w: tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)}
}

// Header writes the header row and its underline
func (t *Table) Header(cols ...string) {
	lines := make([]string, len(cols))
	for i, c := range cols {
		lines[i] = strings.Repeat("─", len([]rune(c)))
	}
	fmt.Fprintln(t.w, strings.Join(cols, "\t"))
	fmt.Fprintln(t.w, strings.Join(lines, "\t"))
}

// Row writes one row
func (t *Table) Row(cells ...string) {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

// KV writes a label and value pair, for detail views
func (t *Table) KV(label, value string) {
	fmt.Fprintf(t.w, "%s:\t%s\n", label, value)
}

// Flush writes the buffered table
func (t *Table) Flush() error {
	return t.w.Flush()
}
