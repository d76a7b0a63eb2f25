package fdr

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// writers are the table writers, keyed by format
var writers = map[string]func(w io.Writer, t *Table) error{
	"csv":  writeCSV(','),
	"tsv":  writeCSV('\t'),
	"json": writeJSON,
	"yaml": writeYAML,
	"text": writeText,
}

// Formats returns the names of the output formats, sorted.
func Formats() []string {
	formats := make([]string, 0, len(writers))
	for f := range writers {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// FormatFromPath guesses an output format from a file extension, defaulting to csv.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv":
		return "tsv"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".txt":
		return "text"
	}
	return "csv"
}

// Write serializes the table to w in the format requested.
func Write(format string, w io.Writer, t *Table) error {
	fn, ok := writers[format]
	if !ok {
		return fmt.Errorf("unknown output format %q, expected one of %s", format, strings.Join(Formats(), ", "))
	}
	return fn(w, t)
}

// WriteFile writes the table to filename ("-" for stdout). An empty format is guessed from filename.
func WriteFile(filename, format string, t *Table) error {
	if format == "" {
		format = FormatFromPath(filename)
	}

	var buf bytes.Buffer
	if err := Write(format, &buf, t); err != nil {
		return err
	}

	if filename == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write the output: %w", err)
	}
	return nil
}

// formatCell renders a cell as text. Undefined values are "NaN".
func formatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return "NaN"
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case float64:
		if math.IsNaN(c) {
			return "NaN"
		}
		return strconv.FormatFloat(c, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// jsonCell swaps NaN for nil since JSON has no NaN.
func jsonCell(v interface{}) interface{} {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nil
	}
	return v
}

func writeCSV(comma rune) func(w io.Writer, t *Table) error {
	return func(w io.Writer, t *Table) error {
		cw := csv.NewWriter(w)
		cw.Comma = comma

		if err := cw.Write(t.Schema.Columns()); err != nil {
			return err
		}
		for _, r := range t.Rows {
			values := r.Values(t.Schema)
			record := make([]string, len(values))
			for i, v := range values {
				record[i] = formatCell(v)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
}

// orderedRow marshals to a JSON object with keys in column order.
type orderedRow struct {
	keys   []string
	values []interface{}
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(jsonCell(o.values[i]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(w io.Writer, t *Table) error {
	columns := t.Schema.Columns()
	rows := make([]orderedRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = orderedRow{keys: columns, values: r.Values(t.Schema)}
	}

	output, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize output: %w", err)
	}
	_, err = w.Write(append(output, '\n'))
	return err
}

func writeYAML(w io.Writer, t *Table) error {
	columns := t.Schema.Columns()
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, v := range r.Values(t.Schema) {
			value := &yaml.Node{}
			if err := value.Encode(jsonCell(v)); err != nil {
				return fmt.Errorf("failed to serialize %s: %w", columns[i], err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: columns[i]}, value)
		}
		doc.Content = append(doc.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to serialize output: %w", err)
	}
	return enc.Close()
}

// writeText writes an aligned table for the console.
func writeText(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Schema.Columns(), "\t")+"\t")
	for _, r := range t.Rows {
		values := r.Values(t.Schema)
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}
