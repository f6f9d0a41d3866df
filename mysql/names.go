package mysql

import (
	"fmt"
	"strings"
)

// sanitizeTableName accepts plain or schema-qualified names built from ASCII
// letters, digits and underscores. Table names are interpolated into SQL, so
// anything else is rejected.
func sanitizeTableName(name string) (string, error) {
	if name == "" {
		return "", ErrTableNameRequired
	}
	for _, part := range strings.Split(name, ".") {
		if !validNamePart(part) {
			return "", fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
	}

	return name, nil
}

func validNamePart(part string) bool {
	if part == "" {
		return false
	}
	for _, r := range part {
		switch {
		case r == '_', r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}

	return true
}
