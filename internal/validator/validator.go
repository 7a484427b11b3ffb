package validator

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidLineType    = errors.New("invalid line type")
	ErrInvalidAccountKind = errors.New("invalid account kind")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

var accountKinds = map[string]struct{}{
	"bank":   {},
	"cash":   {},
	"card":   {},
	"emoney": {},
}

var lineTypes = map[string]struct{}{
	"income":    {},
	"expense":   {},
	"asset":     {},
	"liability": {},
	"advance":   {},
	"loan":      {},
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateAccountKind(kind string) error {
	if _, ok := accountKinds[kind]; !ok {
		return ErrInvalidAccountKind
	}
	return nil
}

func ValidateLineType(lineType string) error {
	if _, ok := lineTypes[lineType]; !ok {
		return ErrInvalidLineType
	}
	return nil
}
