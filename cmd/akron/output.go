package main

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Akash-nath29/akron/pkg/akron"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("unsupported format %q (expected %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func writeSchema(w io.Writer, format string, tables []*akron.TableSchema) error {
	switch format {
	case formatJSON:
		return writeJSON(w, tables)
	case formatYAML:
		return writeYAML(w, tables)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "Table: %s\n", t.Name)
		fmt.Fprintln(tw, "COLUMN\tTYPE\tNULL\tKEY\tREFERENCES")
		for _, c := range t.Columns {
			key := ""
			switch {
			case c.PrimaryKey:
				key = "PRI"
			case c.Unique:
				key = "UNI"
			}
			ref := ""
			if c.References != nil {
				ref = c.References.Table + "." + c.References.Column
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Type, yesNo(c.Nullable), key, ref)
		}
		for _, idx := range t.Indexes {
			kind := "index"
			if idx.Unique {
				kind = "unique index"
			}
			fmt.Fprintf(tw, "%s %s (%s)\n", kind, idx.Name, strings.Join(idx.Columns, ", "))
		}
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func writeRows(w io.Writer, format string, rows []akron.Row) error {
	if format == formatJSON {
		if rows == nil {
			rows = []akron.Row{}
		}
		return writeJSON(w, rows)
	}

	columns := rowColumns(rows)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(row[col])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

// rowColumns returns the union of row keys, sorted.
func rowColumns(rows []akron.Row) []string {
	seen := map[string]bool{}
	var columns []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

// decodeRows parses a JSON object or array of objects. Integral numbers
// become int64 so they fit int columns.
func decodeRows(payload string) ([]map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse json data: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, fmt.Errorf("json data must be an object or an array of objects")
	}

	rows := make([]map[string]any, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d is not a json object", i)
		}
		for key, val := range obj {
			obj[key] = normalizeNumber(val)
		}
		rows[i] = obj
	}
	return rows, nil
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
