package mysql

import (
	"encoding/json"
	"strings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// jsonOrEmpty keeps JSON columns valid: blank becomes {} and anything that
// does not parse is wrapped as {"raw": ...}.
func jsonOrEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "{}"
	}
	if !json.Valid([]byte(s)) {
		b, _ := json.Marshal(map[string]string{"raw": s})
		return string(b)
	}
	return s
}
