// email.go - Email address format rules for registration and login

package auth

import (
	"regexp"
	"strings"
)

// MaxEmailLength is the longest address accepted.
const MaxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like local@domain.tld with no whitespace
// and none of the characters <>()[]\,;:"/ anywhere.
func ValidEmail(s string) bool {
	if s == "" || len(s) > MaxEmailLength {
		return false
	}
	if strings.ContainsAny(s, " \t\r\n") || strings.ContainsAny(s, `<>()[]\,;:"/`) {
		return false
	}
	return emailPattern.MatchString(s)
}
