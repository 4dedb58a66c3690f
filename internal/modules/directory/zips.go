package directory

import (
	"regexp"
	"strings"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

var zipSeparators = regexp.MustCompile(`[,;\s]+`)

// NormalizeServiceZips trims the codes, keeps the valid 5-digit ones and drops
// duplicates, preserving the first occurrence order.
func NormalizeServiceZips(zips []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(zips))
	for _, zip := range zips {
		zip = strings.TrimSpace(zip)
		if !geo.ValidZip(zip) {
			continue
		}
		if _, ok := seen[zip]; ok {
			continue
		}
		seen[zip] = struct{}{}
		out = append(out, zip)
	}
	return out
}

// AppendServiceZips adds the codes typed in input, separated by commas,
// semicolons or spaces, after the existing ones. Invalid codes are ignored.
func AppendServiceZips(existing []string, input string) []string {
	return NormalizeServiceZips(append(append([]string{}, existing...), zipSeparators.Split(input, -1)...))
}
