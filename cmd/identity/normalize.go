package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization: trim + lower-case.
// Applied before every lookup and before storage so the unique constraint
// cannot be dodged by casing.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
