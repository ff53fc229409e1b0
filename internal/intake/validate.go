package intake

import (
	"regexp"
	"strings"
)

// emailPattern accepts local@domain.tld with no embedded whitespace. The
// check is intentionally shallow: the address is only used to contact the
// customer back, not for account identity.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

var phoneStrip = regexp.MustCompile(`[^\d\+\s\(\)]`)

// CleanPhone keeps digits, '+', whitespace and parentheses, dropping
// everything else. Normalization stays loose: the number is dialed by a
// human, not a machine.
func CleanPhone(s string) string {
	return phoneStrip.ReplaceAllString(strings.TrimSpace(s), "")
}

// truthyTokens is the closed set of accepted affirmative values for the
// has_design flag. Anything else is falsy; parsing never errors.
var truthyTokens = map[string]struct{}{
	"1":    {},
	"true": {},
	"yes":  {},
	"si":   {},
	"sí":   {},
	"y":    {},
}

// Truthy parses a form flag against the closed token set, case-insensitively.
func Truthy(s string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// FieldPolicy names which optional field groups are mandatory for a
// deployment. The required set varies between store fronts, so it is
// configuration, not code.
type FieldPolicy struct {
	RequireEmail    bool
	RequireShipping bool
}
