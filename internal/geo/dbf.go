package geo

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Valentin-Kaiser/go-dbase/dbase"
)

// Column names accepted for each field of a dBase attribute table, compared
// case-insensitively. Shapefile exports truncate names to 10 characters.
var (
	dbfZipColumns = []string{"cp", "code_postal", "code_posta", "codepostal", "postcode", "zip"}
	dbfLatColumns = []string{"lat", "latitude"}
	dbfLngColumns = []string{"lng", "lon", "long", "longitude"}
)

// parseDBF reads a dBase table. The driver works on files, so the stream is
// spooled to a temporary file first.
func parseDBF(r io.Reader) (Index, error) {
	tmp, err := os.CreateTemp("", "postal-codes-*.dbf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file for dbf import: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("spooling dbf import: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("spooling dbf import: %w", err)
	}

	table, err := dbase.OpenTable(&dbase.Config{
		Filename:   tmp.Name(),
		TrimSpaces: true,
		Untested:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	defer table.Close()

	names := make([]string, 0, len(table.Columns()))
	for _, column := range table.Columns() {
		names = append(names, column.Name())
	}
	zipCol, okZip := findColumn(names, dbfZipColumns)
	latCol, okLat := findColumn(names, dbfLatColumns)
	lngCol, okLng := findColumn(names, dbfLngColumns)
	if !okZip || !okLat || !okLng {
		return nil, fmt.Errorf("%w: dbf table lacks postal code, latitude or longitude columns (have %s)",
			ErrInvalidImport, strings.Join(names, ", "))
	}

	idx := make(Index)
	for !table.EOF() {
		row, err := table.Next()
		if err != nil {
			// a single unreadable row is a malformed record
			continue
		}
		if row.Deleted {
			continue
		}

		zip, ok := dbfZip(fieldValue(row, zipCol))
		if !ok {
			continue
		}
		lat, okLat := dbfFloat(fieldValue(row, latCol))
		lng, okLng := dbfFloat(fieldValue(row, lngCol))
		if okLat && okLng {
			addRecord(idx, zip, lat, lng)
		}
	}
	return idx, nil
}

func findColumn(names, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(name), candidate) {
				return name, true
			}
		}
	}
	return "", false
}

func fieldValue(row *dbase.Row, column string) any {
	field := row.FieldByName(column)
	if field == nil {
		return nil
	}
	return field.GetValue()
}

// dbfZip accepts character columns as-is and restores the leading zero that a
// numeric column drops (1000 -> "01000").
func dbfZip(v any) (string, bool) {
	switch z := v.(type) {
	case string:
		return strings.TrimSpace(z), true
	case int64:
		return fmt.Sprintf("%05d", z), true
	case int32:
		return fmt.Sprintf("%05d", z), true
	case float64:
		if z != float64(int64(z)) {
			return "", false
		}
		return fmt.Sprintf("%05d", int64(z)), true
	default:
		return "", false
	}
}

func dbfFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		return parseCoordinate(n)
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
