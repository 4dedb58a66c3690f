package postalcode

import (
	"errors"
	"time"
)

var ErrUnknownPostalCode = errors.New("postal code not in coordinate table")

// Stats describes the coordinate table currently in use.
type Stats struct {
	PostalCodes int        `json:"postalCodes"`
	ImportedAt  *time.Time `json:"importedAt,omitempty"`
}

// ImportResult is returned after a successful coordinate import.
type ImportResult struct {
	PostalCodes int    `json:"postalCodes"`
	Format      string `json:"format"`
}
