// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// AllowedEmailDomains lists the institutional domains accepted at
// registration. A candidate email passes when its domain ends with any entry.
var AllowedEmailDomains = []string{"stu.cu.edu.ng"}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)

// ValidateEmailDomain checks that email is well formed and belongs to an
// allowed institutional domain.
func ValidateEmailDomain(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email format")
	}

	domain := email[at+1:]
	for _, allowed := range AllowedEmailDomains {
		if strings.HasSuffix(domain, allowed) {
			return nil
		}
	}

	return fmt.Errorf("email must be from %s", strings.Join(AllowedEmailDomains, ", "))
}

// ValidateUsername checks username length and character set.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-50 characters and contain only letters, numbers, dots, underscores, and hyphens")
	}
	if strings.HasPrefix(username, ".") || strings.HasSuffix(username, ".") {
		return fmt.Errorf("username cannot start or end with a dot")
	}
	return nil
}

// ValidatePassword checks if a password meets the minimum requirements.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}
