package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes the enriched table with a header row.
func WriteCSV(w io.Writer, result *Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(result.Columns); err != nil {
		return err
	}

	row := make([]string, len(result.Columns))
	for i := range result.Courses {
		for j, column := range result.Columns {
			row[j] = result.Courses[i].Value(column)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteReportCSV(w io.Writer, missing []MissingValue) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"column", "missing_count", "missing_pct"}); err != nil {
		return err
	}
	for _, m := range missing {
		row := []string{m.Column, strconv.Itoa(m.Count), strconv.FormatFloat(m.Percent, 'f', -1, 64)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFileAtomic writes through a temporary file in the target directory
// and renames it into place once write succeeds. On error path is untouched.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
