package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// Load reads a CSV dataset and validates that the required column set is
// present: timestamp, machine_id, label, and every column in numeric.
// Numeric header columns beyond the required set (derived features of a
// previously scored table) are loaded as well, so a scored file round-trips.
func Load(log *slog.Logger, path string, numeric []string) (Table, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Table{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(records) == 0 {
		return Table{}, NewMissingColumnsError(requiredColumns(numeric))
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	var missing []string
	for _, name := range requiredColumns(numeric) {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Table{}, NewMissingColumnsError(missing)
	}

	columns := slices.Clone(numeric)
	for _, name := range header {
		if isMetaColumn(name) || slices.Contains(columns, name) {
			continue
		}
		columns = append(columns, name)
	}

	_, hasZ := index[ColAnomalyZScore]
	_, hasIQR := index[ColAnomalyIQR]
	_, hasCombined := index[ColAnomalyCombined]
	hasFlags := hasZ && hasIQR && hasCombined

	table := New(columns)
	table.HasFlags = hasFlags
	table.Rows = make([]Row, 0, len(records)-1)

	for n, record := range records[1:] {
		row := Row{Values: make(map[string]float64, len(columns))}

		row.Timestamp, err = time.Parse(time.RFC3339, record[index[ColTimestamp]])
		if err != nil {
			return Table{}, fmt.Errorf("failed to parse timestamp on line %d: %w", n+2, err)
		}
		row.MachineID = record[index[ColMachineID]]
		row.Label, err = parseBool(record[index[ColLabel]])
		if err != nil {
			return Table{}, fmt.Errorf("failed to parse label on line %d: %w", n+2, err)
		}

		for _, name := range columns {
			row.Values[name] = parseCell(record[index[name]])
		}

		if hasFlags {
			row.Anomaly.ZScore, err = parseBool(record[index[ColAnomalyZScore]])
			if err != nil {
				return Table{}, fmt.Errorf("failed to parse %s on line %d: %w", ColAnomalyZScore, n+2, err)
			}
			row.Anomaly.IQR, err = parseBool(record[index[ColAnomalyIQR]])
			if err != nil {
				return Table{}, fmt.Errorf("failed to parse %s on line %d: %w", ColAnomalyIQR, n+2, err)
			}
			row.Anomaly.Combined, err = parseBool(record[index[ColAnomalyCombined]])
			if err != nil {
				return Table{}, fmt.Errorf("failed to parse %s on line %d: %w", ColAnomalyCombined, n+2, err)
			}
		}

		table.Rows = append(table.Rows, row)
	}

	log.Info("Loaded dataset",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)+3))

	return table, nil
}

// WriteCSV writes the table to path, creating parent directories. Numbers
// are formatted with the shortest representation that round-trips exactly.
func (t Table) WriteCSV(log *slog.Logger, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{ColTimestamp, ColMachineID}
	header = append(header, t.Columns...)
	header = append(header, ColLabel)
	if t.HasFlags {
		header = append(header, ColAnomalyZScore, ColAnomalyIQR, ColAnomalyCombined)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, 0, len(header))
	for _, row := range t.Rows {
		record = record[:0]
		record = append(record, row.Timestamp.Format(time.RFC3339), row.MachineID)
		for _, name := range t.Columns {
			record = append(record, formatCell(row.Values, name))
		}
		record = append(record, formatLabel(row.Label))
		if t.HasFlags {
			record = append(record,
				strconv.FormatBool(row.Anomaly.ZScore),
				strconv.FormatBool(row.Anomaly.IQR),
				strconv.FormatBool(row.Anomaly.Combined))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}

	log.Info("Wrote dataset",
		slog.String("path", path),
		slog.Int("rows", len(t.Rows)))

	return nil
}

func requiredColumns(numeric []string) []string {
	required := []string{ColTimestamp, ColMachineID, ColLabel}
	return append(required, numeric...)
}

func isMetaColumn(name string) bool {
	switch name {
	case ColTimestamp, ColMachineID, ColLabel,
		ColAnomalyZScore, ColAnomalyIQR, ColAnomalyCombined:
		return true
	}
	return false
}

func parseCell(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatCell(values map[string]float64, name string) string {
	v, ok := values[name]
	if !ok || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return strconv.ParseBool(s)
}

func formatLabel(label bool) string {
	if label {
		return "1"
	}
	return "0"
}
