package password

import (
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MinLength is the shortest password the policy accepts.
const MinLength = 8

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "welcome1": {}, "admin123": {},
	"letmein1": {}, "abc12345": {}, "trustno1": {}, "11111111": {}, "00000000": {},
	"passw0rd": {}, "superman": {}, "starwars": {}, "whatever": {}, "dragon123": {},
	"qwerty12": {}, "monkey12": {}, "senha123": {}, "changeme": {}, "computer": {},
}

// Policy is the credential-strength policy applied to new passwords.
// Every rule is evaluated so that all violations are reported at once.
type Policy struct {
	minLength int
}

func NewPolicy() *Policy {
	return &Policy{minLength: MinLength}
}

// Check returns the list of violations for plain, empty when it is acceptable.
// attributes are user attributes (username, names, email) the password must not resemble.
func (p *Policy) Check(plain string, attributes ...string) []string {
	rules := []validation.Rule{
		validation.RuneLength(p.minLength, 0).
			Error("This password is too short. It must contain at least 8 characters."),
		validation.NewStringRule(notCommon, "This password is too common."),
		validation.NewStringRule(notNumeric, "This password is entirely numeric."),
		validation.NewStringRule(notSimilarTo(attributes), "The password is too similar to your personal information."),
	}

	var violations []string
	for _, rule := range rules {
		if err := rule.Validate(plain); err != nil {
			violations = append(violations, err.Error())
		}
	}
	return violations
}

func notCommon(s string) bool {
	_, found := commonPasswords[strings.ToLower(strings.TrimSpace(s))]
	return !found
}

func notNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return s == ""
}

func notSimilarTo(attributes []string) func(string) bool {
	return func(s string) bool {
		pw := strings.ToLower(s)
		for _, attr := range attributes {
			attr = strings.ToLower(strings.TrimSpace(attr))
			if i := strings.IndexByte(attr, '@'); i > 0 {
				attr = attr[:i]
			}
			if len(attr) < 3 {
				continue
			}
			if pw == attr || strings.Contains(pw, attr) || strings.Contains(attr, pw) {
				return false
			}
		}
		return true
	}
}
