package password

import "strings"

const (
	minLength    = 8
	specialChars = "@#$%^&+=!"
)

// Rule violation messages, in the order they are checked.
const (
	RuleMinLength = "at least 8 characters"
	RuleUpper     = "one uppercase letter"
	RuleLower     = "one lowercase letter"
	RuleDigit     = "one number"
	RuleSpecial   = "one special character (@#$%^&+=!)"
)

// Validate checks every strength rule and returns all violations.
// Letter and digit classes are ASCII only.
// An empty result means the password is acceptable.
func Validate(pw string) []string {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	var violations []string
	if len([]rune(pw)) < minLength {
		violations = append(violations, RuleMinLength)
	}
	if !upper {
		violations = append(violations, RuleUpper)
	}
	if !lower {
		violations = append(violations, RuleLower)
	}
	if !digit {
		violations = append(violations, RuleDigit)
	}
	if !special {
		violations = append(violations, RuleSpecial)
	}
	return violations
}
