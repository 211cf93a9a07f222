package cli

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/khalid-nowaf/netblockr/pkg/netblock"
	"gopkg.in/yaml.v3"
)

// Record is one netblock row of an input file, keyed by column name.
type Record map[string]string

// Columns names the fields of a Record holding each part of a netblock.
type Columns struct {
	NetBlock    string
	Base        string
	Mask        string
	Description string
}

// ReadNetblocks reads every netblock of a CSV, TSV, JSON or YAML file; the
// format follows the file extension. Rows whose mask is not an integer are
// skipped with a warning.
func ReadNetblocks(path string, columns Columns, logger *slog.Logger) ([]netblock.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []netblock.Entry
	row := 0
	onEachRecord := func(record Record) error {
		row++
		entry, err := parseEntry(record, columns)
		if err != nil {
			logger.Warn("Skipping netblock row", slog.String("file", path), slog.Int("row", row), slog.String("error", err.Error()))
			return nil
		}
		entries = append(entries, entry)
		return nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = parseCsv(file, ',', onEachRecord)
	case ".tsv":
		err = parseCsv(file, '\t', onEachRecord)
	case ".json":
		err = parseJson(file, onEachRecord)
	case ".yaml", ".yml":
		err = parseYaml(file, onEachRecord)
	default:
		return nil, fmt.Errorf("unsupported netblock file %q: use .csv, .tsv, .json, .yaml or .yml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}

func parseCsv(r io.Reader, separator rune, onEachRecord func(record Record) error) error {
	reader := csv.NewReader(r)
	reader.Comma = separator
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	// short and long rows are handled per row, not as a file error
	reader.FieldsPerRecord = -1

	// first line is the header
	headers, err := reader.Read()
	if err != nil {
		return err
	}

	for {
		recordData, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		record := make(Record, len(headers))
		for i, value := range recordData {
			if i < len(headers) {
				record[headers[i]] = value
			}
		}
		if err := onEachRecord(record); err != nil {
			return err
		}
	}
}

func parseJson(r io.Reader, onEachRecord func(record Record) error) error {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	// Read opening bracket of the array
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token != json.Delim('[') {
		return fmt.Errorf("expected a JSON array of netblocks, got %v", token)
	}

	for decoder.More() {
		data := map[string]any{}
		if err := decoder.Decode(&data); err != nil {
			return err
		}
		if err := onEachRecord(toRecord(data)); err != nil {
			return err
		}
	}

	// Read closing bracket of the array
	_, err = decoder.Token()
	return err
}

func parseYaml(r io.Reader, onEachRecord func(record Record) error) error {
	var data []map[string]any
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return err
	}
	for _, item := range data {
		if err := onEachRecord(toRecord(item)); err != nil {
			return err
		}
	}
	return nil
}

// JSON and YAML carry masks, and sometimes descriptions, as numbers
func toRecord(data map[string]any) Record {
	record := make(Record, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case nil:
			continue
		case json.Number:
			record[key] = v.String()
		case float64:
			record[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			record[key] = fmt.Sprint(v)
		}
	}
	return record
}

func parseEntry(record Record, columns Columns) (netblock.Entry, error) {
	maskText := strings.TrimSpace(record[columns.Mask])
	mask, err := strconv.Atoi(maskText)
	if err != nil {
		return netblock.Entry{}, fmt.Errorf("%w: %q in column %q is not an integer", netblock.ErrInvalidMaskLength, maskText, columns.Mask)
	}

	return netblock.Entry{
		Label:       strings.TrimSpace(record[columns.NetBlock]),
		Base:        strings.TrimSpace(record[columns.Base]),
		Mask:        mask,
		Description: record[columns.Description],
	}, nil
}

// ReadAddresses reads one address per line; blank lines and lines starting
// with '#' are ignored.
func ReadAddresses(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var addrs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addrs = append(addrs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return addrs, nil
}
