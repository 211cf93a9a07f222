package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Rower is a result that can be written as a row of text cells.
type Rower interface {
	Row() []string
}

type Writer interface {
	Write(out io.Writer, header []string, rows []Rower) error
}

// NewWriter returns the writer for an output format: table, csv, tsv or json.
func NewWriter(format string) (Writer, error) {
	switch format {
	case "table":
		return TableWriter{}, nil
	case "csv":
		return CsvWriter{}, nil
	case "tsv":
		return CsvWriter{isTSV: true}, nil
	case "json":
		return JsonWriter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func asRows[T Rower](items []T) []Rower {
	rows := make([]Rower, len(items))
	for i, item := range items {
		rows[i] = item
	}
	return rows
}

type CsvWriter struct {
	isTSV bool
}

func (w CsvWriter) Write(out io.Writer, header []string, rows []Rower) error {
	writer := csv.NewWriter(out)
	if w.isTSV {
		writer.Comma = '\t'
	}

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Row()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// JsonWriter writes the rows as an array of objects; the header is implied
// by the json tags of the rows.
type JsonWriter struct{}

func (w JsonWriter) Write(out io.Writer, _ []string, rows []Rower) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

// TableWriter renders an aligned text table for terminals.
type TableWriter struct{}

func (w TableWriter) Write(out io.Writer, header []string, rows []Rower) error {
	table := tablewriter.NewWriter(out)
	cells := make([]any, len(header))
	for i, cell := range header {
		cells[i] = cell
	}
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row.Row()); err != nil {
			return err
		}
	}
	return table.Render()
}
