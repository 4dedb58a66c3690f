package geo

import (
	"slices"
	"strings"
)

// Department returns the administrative region of a postal code: its first two
// characters once trimmed. Shorter codes are returned whole.
func Department(zip string) string {
	r := []rune(strings.TrimSpace(zip))
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// SameDepartment reports whether both codes share a non-empty department prefix.
func SameDepartment(a, b string) bool {
	dep := Department(a)
	return dep != "" && dep == Department(b)
}

// Serves decides whether a provider located at providerZip covers requesterZip.
//
// The first decisive rule wins:
//  1. no requester code: every provider serves it
//  2. requesterZip is one of the provider's explicit servedZips
//  3. both codes are geocoded and radiusKm > 0: haversine distance <= radiusKm
//  4. otherwise radiusKm > 0 and both codes share the same department prefix
//
// A radius of 0 disables rules 3 and 4. Codes are compared as opaque strings.
func Serves(requesterZip, providerZip string, radiusKm float64, idx Index, servedZips []string) bool {
	zip := strings.TrimSpace(requesterZip)
	if zip == "" {
		return true
	}

	if slices.Contains(servedZips, zip) {
		return true
	}

	providerZip = strings.TrimSpace(providerZip)
	if radiusKm > 0 {
		from, okFrom := idx.Lookup(providerZip)
		to, okTo := idx.Lookup(zip)
		if okFrom && okTo {
			return DistanceKm(from, to) <= radiusKm
		}
	}

	if providerZip == "" || !(radiusKm > 0) {
		return false
	}
	return SameDepartment(providerZip, zip)
}
