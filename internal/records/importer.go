package records

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const importBatchSize = 500

// ImportCSV loads records from a CSV stream into w. The header row must name
// sr_id; the comparable columns may appear in any order and unknown columns
// are ignored. Empty cells are stored as NULL. It returns the number of
// records written.
func ImportCSV(ctx context.Context, w Writer, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("import csv: missing header row")
		}
		return 0, fmt.Errorf("import csv: read header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}
	idPos, ok := positions[ColumnID]
	if !ok {
		return 0, fmt.Errorf("import csv: header lacks %s column", ColumnID)
	}

	total := 0
	batch := make([]Record, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.Put(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return total, fmt.Errorf("import csv: line %d: %w", line, err)
		}
		id := cell(row, idPos).String
		if id == "" {
			return total, fmt.Errorf("import csv: line %d: empty %s", line, ColumnID)
		}
		rec := Record{ID: id}
		for _, column := range Columns {
			if pos, ok := positions[column]; ok {
				_ = rec.SetField(column, cell(row, pos))
			}
		}
		batch = append(batch, rec)
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return total, fmt.Errorf("import csv: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return total, fmt.Errorf("import csv: %w", err)
	}
	return total, nil
}

func cell(row []string, pos int) sql.NullString {
	if pos >= len(row) || row[pos] == "" {
		return sql.NullString{}
	}
	return Text(row[pos])
}
