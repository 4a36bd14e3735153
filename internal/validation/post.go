package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinContentLength is the shortest acceptable post body.
	MinContentLength = 10
	// MaxContentLength is the longest acceptable post body.
	MaxContentLength = 5000
	// MaxTitleLength matches the posts.title column width.
	MaxTitleLength = 200
)

// Accepted price shapes: "₦5,000", "$5,000.00", "5,000 NGN".
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^₦\d+(,\d{3})*(\.\d{2})?$`),
	regexp.MustCompile(`^\$\d+(,\d{3})*(\.\d{2})?$`),
	regexp.MustCompile(`^\d+(,\d{3})*(\.\d{2})?\s*(NGN|USD)$`),
}

// ValidatePostContent checks post body length bounds.
func ValidatePostContent(content string) error {
	if len(content) < MinContentLength {
		return fmt.Errorf("content must be at least %d characters", MinContentLength)
	}
	if len(content) > MaxContentLength {
		return fmt.Errorf("content must be at most %d characters", MaxContentLength)
	}
	return nil
}

// ValidatePostTitle checks post title presence and length.
func ValidatePostTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

// ValidatePriceFormat checks a marketplace price string. An empty price is
// valid; marketplace posts without one are treated as "contact for price".
func ValidatePriceFormat(price string) error {
	if price == "" {
		return nil
	}
	trimmed := strings.TrimSpace(price)
	for _, p := range pricePatterns {
		if p.MatchString(trimmed) {
			return nil
		}
	}
	return fmt.Errorf("invalid price format, use a format like ₦5,000 or $5,000")
}
