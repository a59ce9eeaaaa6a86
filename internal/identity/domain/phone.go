package domain

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("phone number must be E.164, e.g. +919876543210")

var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// NormalizePhone trims s and checks it is an E.164 number.
func NormalizePhone(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !e164.MatchString(s) {
		return "", ErrInvalidPhone
	}
	return s, nil
}

// MaskPhone keeps the country code and last two digits for logs.
func MaskPhone(phone string) string {
	if len(phone) <= 5 {
		return "***"
	}
	return phone[:3] + strings.Repeat("*", len(phone)-5) + phone[len(phone)-2:]
}
