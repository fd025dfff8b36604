package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	organizationIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	tenantIDPattern       = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateOrganizationID only rejects ids that could never exist (empty,
// overlong, or containing separators). Unknown but well-formed ids are left
// to the store and come back as not found.
func ValidateOrganizationID(id string) error {
	if id == "" {
		return fmt.Errorf("organization ID cannot be empty")
	}
	if !organizationIDPattern.MatchString(id) {
		return fmt.Errorf("invalid organization ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantIDPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ParseInt reads an optional positive integer query value; blank gives 0.
func ParseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return n, nil
}

// ValidateLimit clamps the batch size (organizations per run).
func ValidateLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage clamps page / page_size for archive listing.
func ValidatePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
