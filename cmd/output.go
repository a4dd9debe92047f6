package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
)

// printResult writes an API reply either as indented JSON or as a
// two-column table of flattened keys.
func printResult(w io.Writer, result yophone.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}

	if len(result) == 0 {
		_, err := fmt.Fprintln(w, "(empty reply)")
		return err
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, row := range flatten("", map[string]any(result)) {
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// newTable creates a table writer with the CLI's light style.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// flatten turns nested maps and slices into dotted key rows, sorted by key.
func flatten(prefix string, v any) []table.Row {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		var rows []table.Row
		for _, k := range keys {
			rows = append(rows, flatten(join(prefix, k), val[k])...)
		}
		if len(rows) == 0 && prefix != "" {
			rows = append(rows, table.Row{prefix, "{}"})
		}
		return rows

	case []any:
		var rows []table.Row
		for i, item := range val {
			rows = append(rows, flatten(join(prefix, strconv.Itoa(i)), item)...)
		}
		if len(rows) == 0 {
			rows = append(rows, table.Row{prefix, "[]"})
		}
		return rows

	case nil:
		return []table.Row{{prefix, "null"}}

	case float64:
		return []table.Row{{prefix, strconv.FormatFloat(val, 'f', -1, 64)}}

	default:
		return []table.Row{{prefix, fmt.Sprint(val)}}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
