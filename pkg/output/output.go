package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

// Printer writes decorated messages. Out carries results, Err carries errors.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

func NewPrinter(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{Out: out, Err: errOut}
}

var std = NewPrinter(nil, nil)

func (p *Printer) Success(format string, a ...interface{}) {
	successColor.Fprintf(p.Out, "✓ "+format+"\n", a...)
}

func (p *Printer) Error(format string, a ...interface{}) {
	errorColor.Fprintf(p.Err, "✗ "+format+"\n", a...)
}

func (p *Printer) Info(format string, a ...interface{}) {
	infoColor.Fprintf(p.Out, format+"\n", a...)
}

func (p *Printer) Warn(format string, a ...interface{}) {
	warnColor.Fprintf(p.Out, "⚠ "+format+"\n", a...)
}

func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) YAML(v interface{}) error {
	enc := yaml.NewEncoder(p.Out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func Success(format string, a ...interface{}) { std.Success(format, a...) }

func Error(format string, a ...interface{}) { std.Error(format, a...) }

func Info(format string, a ...interface{}) { std.Info(format, a...) }

func Warn(format string, a ...interface{}) { std.Warn(format, a...) }

func JSON(v interface{}) error { return std.JSON(v) }

func YAML(v interface{}) error { return std.YAML(v) }

type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
	}
}

func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Render() {
	t.RenderTo(os.Stdout)
}

// RenderTo writes the table to w. Widths count runes so non-ASCII cells
// stay aligned.
func (t *Table) RenderTo(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	// Print header
	for i, header := range t.headers {
		headerColor.Fprint(w, pad(header, widths[i])+"  ")
	}
	fmt.Fprintln(w)

	// Print separator
	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)

	// Print rows
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			fmt.Fprint(w, pad(cell, widths[i])+"  ")
		}
		fmt.Fprintln(w)
	}
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
