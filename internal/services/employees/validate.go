package employees

import (
	"errors"
	"regexp"
	"strings"

	"github.com/UnknownOlympus/athena/internal/models"
)

var (
	ErrInvalidDraft      = errors.New("invalid employee")
	ErrFirstNameRequired = errors.New("first name is required")
	ErrLastNameRequired  = errors.New("last name is required")
	ErrPhoneRequired     = errors.New("phone number is required")
	ErrPhoneInvalid      = errors.New("invalid phone number")
	ErrStreetRequired    = errors.New("street is required")
	ErrPostcodeRequired  = errors.New("postcode is required")
	ErrPostcodeInvalid   = errors.New("postcode must contain 5 digits")
	ErrCityRequired      = errors.New("city is required")
)

var (
	phoneRegex    = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	postcodeRegex = regexp.MustCompile(`^\d{5}$`)
)

// ValidateDraft checks the form rules callers enforce before create or update.
// All violations are joined into one error wrapping ErrInvalidDraft.
func ValidateDraft(draft models.EmployeeDraft) error {
	var errs []error

	if strings.TrimSpace(draft.FirstName) == "" {
		errs = append(errs, ErrFirstNameRequired)
	}
	if strings.TrimSpace(draft.LastName) == "" {
		errs = append(errs, ErrLastNameRequired)
	}

	switch {
	case strings.TrimSpace(draft.Phone) == "":
		errs = append(errs, ErrPhoneRequired)
	case !isValidPhoneNumber(draft.Phone):
		errs = append(errs, ErrPhoneInvalid)
	}

	if strings.TrimSpace(draft.Street) == "" {
		errs = append(errs, ErrStreetRequired)
	}

	switch {
	case strings.TrimSpace(draft.Postcode) == "":
		errs = append(errs, ErrPostcodeRequired)
	case !postcodeRegex.MatchString(draft.Postcode):
		errs = append(errs, ErrPostcodeInvalid)
	}

	if strings.TrimSpace(draft.City) == "" {
		errs = append(errs, ErrCityRequired)
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrInvalidDraft}, errs...)...)
}

// isValidPhoneNumber accepts digits, spaces, dashes and parentheses with an optional leading plus.
func isValidPhoneNumber(phone string) bool {
	return phoneRegex.MatchString(phone)
}
