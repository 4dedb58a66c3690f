// Package geo holds the postal code coordinate index and the rules used to decide
// whether a provider covers a requester's postal code.
package geo

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// ValidZip reports whether zip is exactly five decimal digits.
func ValidZip(zip string) bool {
	return zipPattern.MatchString(zip)
}

// Point is a latitude/longitude pair. It is encoded as a two-element array,
// [lat, lng], which is the shape the imported tables and the snapshots use.
type Point struct {
	Lat float64
	Lng float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) < 2 {
		return fmt.Errorf("coordinate pair needs 2 values, got %d", len(pair))
	}
	p.Lat, p.Lng = pair[0], pair[1]
	return nil
}

func (p Point) valid() bool {
	return finite(p.Lat) && finite(p.Lng)
}

// Index maps a 5-digit postal code to its coordinates.
//
// An Index is never modified after it has been built: an import produces a new
// Index that replaces the previous one as a whole.
type Index map[string]Point

// Lookup returns the coordinates of zip.
func (idx Index) Lookup(zip string) (Point, bool) {
	p, ok := idx[zip]
	return p, ok
}

// Len returns the number of postal codes in the index.
func (idx Index) Len() int {
	return len(idx)
}

// Sanitized returns a copy of idx holding only well-formed entries.
func (idx Index) Sanitized() Index {
	out := make(Index, len(idx))
	for zip, p := range idx {
		if ValidZip(zip) && p.valid() {
			out[zip] = p
		}
	}
	return out
}
