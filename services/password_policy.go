package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MinAdminPasswordLength is the shortest password accepted for an admin
const MinAdminPasswordLength = 12

// minCharClasses is how many of upper, lower, digit and symbol an admin
// password must mix
const minCharClasses = 3

var (
	ErrPasswordTooShort     = fmt.Errorf("password must be at least %d characters long", MinAdminPasswordLength)
	ErrPasswordTooSimple    = fmt.Errorf("password must mix at least %d of: uppercase, lowercase, digits, symbols", minCharClasses)
	ErrPasswordContainsUser = errors.New("password must not contain the email name")
)

// ValidateAdminPassword checks a new admin password against the policy and
// reports every rule it breaks
func ValidateAdminPassword(email, password string) error {
	var errs []error

	if len([]rune(password)) < MinAdminPasswordLength {
		errs = append(errs, ErrPasswordTooShort)
	}

	if charClasses(password) < minCharClasses {
		errs = append(errs, ErrPasswordTooSimple)
	}

	local := strings.ToLower(strings.SplitN(strings.TrimSpace(email), "@", 2)[0])
	if len(local) >= 3 && strings.Contains(strings.ToLower(password), local) {
		errs = append(errs, ErrPasswordContainsUser)
	}

	return errors.Join(errs...)
}

func charClasses(password string) int {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
			symbol = true
		}
	}

	n := 0
	for _, ok := range []bool{upper, lower, digit, symbol} {
		if ok {
			n++
		}
	}
	return n
}
