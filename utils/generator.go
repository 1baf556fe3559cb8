package utils

import (
	"fmt"
	"strings"
)

// FormatMemberCode renders the human-readable member identifier.
func FormatMemberCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s%d", strings.ToUpper(prefix), seq)
}

// NormalizeMemberCode trims and upper-cases a code typed by a person.
func NormalizeMemberCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
