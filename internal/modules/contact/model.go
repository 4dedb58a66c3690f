package contact

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrMissingField = errors.New("missing required field")

// Request is what a visitor submits from a provider's card.
type Request struct {
	ProviderID  string `json:"provider_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientCity  string `json:"client_city"`
	ProjectDesc string `json:"project_desc"`
	SpokenWith  string `json:"spoken_with"`
}

func (r Request) validate() error {
	for _, f := range []struct{ name, value string }{
		{"provider_id", r.ProviderID},
		{"client_name", r.ClientName},
		{"client_phone", r.ClientPhone},
		{"client_city", r.ClientCity},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &FieldError{Field: f.name}
		}
	}
	return nil
}

// FieldError names the missing field; it matches ErrMissingField.
type FieldError struct{ Field string }

func (e *FieldError) Error() string        { return ErrMissingField.Error() + ": " + e.Field }
func (e *FieldError) Is(target error) bool { return target == ErrMissingField }

// Payload is the message handed to the mail relay. Field names are the
// template variables of the relay.
type Payload struct {
	ClientName       string `json:"client_name"`
	ClientPhone      string `json:"client_phone"`
	ClientCity       string `json:"client_city"`
	ProjectDesc      string `json:"project_desc"`
	SpokenWith       string `json:"spoken_with"`
	ElectricianName  string `json:"electrician_name"`
	ElectricianEmail string `json:"electrician_email"`
	ElectricianPhone string `json:"electrician_phone"`
	ElectricianCity  string `json:"electrician_city"`
	ElectricianZip   string `json:"electrician_zip"`
	RequestDate      string `json:"request_date"`
}

// Field limits, in characters.
const (
	maxName    = 120
	maxPhone   = 40
	maxCity    = 80
	maxProject = 1200
	maxSpoken  = 80
	maxEmail   = 120
	maxZip     = 10
)

// Sanitize drops NUL characters, turns Unicode line and paragraph separators
// into newlines and keeps at most max characters.
func Sanitize(s string, max int) string {
	s = strings.NewReplacer("\x00", "", "\u2028", "\n", "\u2029", "\n").Replace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
