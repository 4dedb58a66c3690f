package geo

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidImport is returned when an import yields no usable postal code.
var ErrInvalidImport = errors.New("no valid postal code data found")

// Format identifies the layout of an imported coordinate table.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatDBF  Format = "dbf"
)

// FormatFromFilename picks the import format from a file extension.
// Anything that is neither .json nor .dbf is read as delimited text.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".dbf":
		return FormatDBF
	default:
		return FormatCSV
	}
}

// ParseIndex builds an Index from r. Malformed records are skipped; the import
// fails with ErrInvalidImport only when no record at all is usable.
func ParseIndex(r io.Reader, format Format) (Index, error) {
	var (
		idx Index
		err error
	)
	switch format {
	case FormatJSON:
		idx, err = parseJSON(r)
	case FormatCSV, "":
		idx, err = parseDelimited(r)
	case FormatDBF:
		idx, err = parseDBF(r)
	default:
		return nil, fmt.Errorf("unsupported postal code format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, ErrInvalidImport
	}
	return idx, nil
}

// parseJSON reads {"31000": [43.6045, 1.4442], ...}.
func parseJSON(r io.Reader) (Index, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	idx := make(Index, len(raw))
	for zip, value := range raw {
		var pair []any
		if err := json.Unmarshal(value, &pair); err != nil || len(pair) < 2 {
			continue
		}
		lat, okLat := toFloat(pair[0])
		lng, okLng := toFloat(pair[1])
		if okLat && okLng {
			addRecord(idx, zip, lat, lng)
		}
	}
	return idx, nil
}

// parseDelimited reads one "zip;lat;lng" or "zip,lat,lng" record per line.
func parseDelimited(r io.Reader) (Index, error) {
	idx := make(Index)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if isHeader(line) {
				continue
			}
		}

		fields := splitRecord(line)
		if len(fields) < 3 {
			continue
		}
		lat, okLat := parseCoordinate(fields[1])
		lng, okLng := parseCoordinate(fields[2])
		if okLat && okLng {
			addRecord(idx, fields[0], lat, lng)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading postal code table: %w", err)
	}
	return idx, nil
}

func isHeader(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, "cp") && strings.Contains(l, "lat") &&
		(strings.Contains(l, "lng") || strings.Contains(l, "lon"))
}

// splitRecord uses ';' when the line has one, so that decimal commas survive.
func splitRecord(line string) []string {
	sep := ","
	if strings.Contains(line, ";") {
		sep = ";"
	}
	fields := strings.Split(line, sep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func parseCoordinate(s string) (float64, bool) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		return parseCoordinate(n)
	default:
		return 0, false
	}
}

func addRecord(idx Index, zip string, lat, lng float64) {
	p := Point{Lat: lat, Lng: lng}
	if !ValidZip(zip) || !p.valid() {
		return
	}
	idx[zip] = p
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
