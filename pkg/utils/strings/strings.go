package strings

import (
	"strings"
)

// TrimPrefixAll trims prefix from s repeatedly, until s does not start with prefix.
func TrimPrefixAll(s, prefix string) string {
	if prefix == "" {
		return s
	}
	for strings.HasPrefix(s, prefix) {
		s = strings.TrimPrefix(s, prefix)
	}
	return s
}
