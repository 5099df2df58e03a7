package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const defaultPhoneRegion = "US"

// ValidationError marks intake payload problems so handlers can map them to 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// normalizeEmail lowercases, validates the shape and checks the domain is a
// registrable IDNA hostname. Returns the canonical form.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalidField("email", "is required")
	}
	if !emailPattern.MatchString(email) {
		return "", invalidField("email", "is not a valid address")
	}
	parts := strings.SplitN(email, "@", 2)
	domain := parts[1]
	if !isDomainValid(domain) {
		return "", invalidField("email", "domain is malformed")
	}
	if ascii, err := idnaProfile.ToASCII(domain); err != nil || ascii == "" {
		return "", invalidField("email", "domain is not resolvable")
	}
	return email, nil
}

// normalizePhone parses the number against the region and formats it E.164.
// Empty input stays empty; an unparseable number is a validation error.
func normalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", invalidField("phone", "cannot be parsed")
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return "", invalidField("phone", "is not a valid number")
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
