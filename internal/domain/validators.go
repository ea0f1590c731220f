package domain

import (
	"fmt"
	"regexp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,24}$`)
	statKeyRegex  = regexp.MustCompile(`^[a-z_]+_(match|m[1-5](m[1-5])*)$`)
)

// ValidateUsername checks signup usernames: 3-24 word characters.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-24 letters, digits or underscores")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// ValidatePositiveAmount checks that a credit amount is positive.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateStatKey checks a scoped stat key, e.g. kills_match or kills_m1m2.
func ValidateStatKey(stat string) error {
	if !statKeyRegex.MatchString(stat) {
		return fmt.Errorf("invalid stat key: %s", stat)
	}
	return nil
}

// ValidateSide checks an OVER/UNDER pick.
func ValidateSide(s Side) error {
	if s != SideOver && s != SideUnder {
		return fmt.Errorf("side must be OVER or UNDER, got %q", s)
	}
	return nil
}
