package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/yigit/ssis/internal/app/models"
)

// Null is the cell written for a cleared foreign key
const Null = "NULL"

// table is one CSV file held in schema column order
type table struct {
	schema *models.Schema
	rows   [][]string
}

// find returns the index of the row whose key equals key, or -1.
func (t *table) find(key string) int {
	for i, row := range t.rows {
		if row[0] == key {
			return i
		}
	}
	return -1
}

// findFold is find with case-insensitive comparison.
func (t *table) findFold(key string) int {
	for i, row := range t.rows {
		if strings.EqualFold(row[0], key) {
			return i
		}
	}
	return -1
}

// ReadFile reads a CSV file written for schema. A leading byte-order mark is
// dropped and columns are matched to the header by label, so column order in
// the file does not matter. A missing file reads as an empty table.
func ReadFile(path string, schema *models.Schema) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f, schema)
}

// Decode parses CSV content for schema; see ReadFile.
func Decode(r io.Reader, schema *models.Schema) ([][]string, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", schema.File, err)
	}

	positions := make([]int, len(schema.Fields))
	for i := range positions {
		positions[i] = -1
	}
	for col, label := range header {
		f, ok := schema.Lookup(label)
		if !ok {
			continue
		}
		positions[schema.Index(f.Column)] = col
	}
	if positions[0] < 0 {
		return nil, fmt.Errorf("%s: header has no %q column", schema.File, schema.Fields[0].Label)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", schema.File, err)
		}

		row := make([]string, len(schema.Fields))
		for i, pos := range positions {
			if pos >= 0 && pos < len(record) {
				row[i] = strings.TrimSpace(record[pos])
			}
		}
		if row[0] == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteFile replaces path with the header of schema followed by rows. The
// content goes to a temporary file in the same directory which is then
// renamed over path.
func WriteFile(path string, schema *models.Schema, rows [][]string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, schema, rows); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Encode writes the byte-order mark, the header and rows to w.
func Encode(w io.Writer, schema *models.Schema, rows [][]string) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(bw)

	if err := writer.Write(schema.Header()); err != nil {
		return fmt.Errorf("failed to write %s header: %w", schema.File, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", schema.File, err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", schema.File, err)
	}
	return nil
}

func nullable(cell string) *string {
	if cell == "" || strings.EqualFold(cell, Null) {
		return nil
	}
	return models.StringPtr(cell)
}

func cell(s *string) string {
	if s == nil {
		return Null
	}
	return *s
}

// plain returns a cell as it reads in a search, with the sentinel as empty.
func plain(cell string) string {
	if strings.EqualFold(cell, Null) {
		return ""
	}
	return cell
}
