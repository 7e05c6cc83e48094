package utils

import (
	appErrors "tour-booking/pkg/errors"
)

const MinPasswordLength = 8

// ValidatePassword checks the password policy and that the confirmation matches.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return appErrors.ErrWeakPassword
	}
	if password != confirm {
		return appErrors.ErrPasswordMismatch
	}
	return nil
}
