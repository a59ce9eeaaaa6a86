package phoneauth

import "strings"

// CountryPrefix is prepended to local numbers before they are sent.
const CountryPrefix = "+91"

const (
	phoneDigits = 10
	codeDigits  = 6
)

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidatePhone accepts exactly ten ASCII digits.
func ValidatePhone(phone string) error {
	if !allDigits(phone, phoneDigits) {
		return &ValidationError{Field: "phone", Reason: "must be exactly 10 digits"}
	}
	return nil
}

// ValidateCode accepts exactly six ASCII digits.
func ValidateCode(code string) error {
	if !allDigits(code, codeDigits) {
		return &ValidationError{Field: "code", Reason: "must be exactly 6 digits"}
	}
	return nil
}

// NormalizePhone validates a local number and returns it in E.164.
func NormalizePhone(phone string) (string, error) {
	if err := ValidatePhone(phone); err != nil {
		return "", err
	}
	return CountryPrefix + phone, nil
}

// DigitsOnly drops everything but ASCII digits and truncates to max, or not
// at all when max is zero or less. It is the input filter for phone and code
// fields; validation still happens on submit. Line based input passes zero
// so a mistyped extra digit is rejected rather than cut off.
func DigitsOnly(s string, max int) string {
	if max <= 0 {
		max = len(s)
	}
	var b strings.Builder
	for i := 0; i < len(s) && b.Len() < max; i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
