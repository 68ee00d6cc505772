package utils

import "strings"

// MaxProfileNameLength is the longest profile name accepted.
const MaxProfileNameLength = 128

// IsValidProfileName checks if a profile name is safe to use as a directory
// name inside the profile store. Hidden names and path separators are rejected
// so a name can never escape the store.
func IsValidProfileName(name string) bool {
	if name == "" || len(name) > MaxProfileNameLength {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		// Allow alphanumeric, hyphen, underscore, and dot
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	return true
}
