package server

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Field bounds carried over from the original API contract.
const (
	nameMinLen     = 3
	nameMaxLen     = 20
	passwordMinLen = 8
	passwordMaxLen = 30
)

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= nameMinLen && n <= nameMaxLen
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func validPassword(password string) bool {
	n := len(password)
	return n >= passwordMinLen && n <= passwordMaxLen
}

// jwtShaped is a cheap structural check (three non-empty dot-separated
// segments) applied before the token ever reaches the issuer.
func jwtShaped(raw string) bool {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}

func numericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
