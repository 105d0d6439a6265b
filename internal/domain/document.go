package domain

import (
	"math"
	"strings"
	"unicode"
)

// Document is a node of the remote document tree.
type Document map[string]any

// Path prefixes of the remote document tree.
const (
	tokensPrefix         = "tokens/"
	validatedUsersPrefix = "validated_users/"
)

// KeyPath is where the KeyRecord for userKey lives.
func KeyPath(userKey string) string { return tokensPrefix + userKey }

// ValidationPath is where the ValidationRecord for userID lives.
func ValidationPath(userID string) string { return validatedUsersPrefix + userID }

// forbiddenKeyChars may not appear in a document key. "/" would split the key
// into several path segments and "." allows "..", which some stores resolve
// to a parent node.
const forbiddenKeyChars = "/.#$[]"

// ValidKey reports whether s can be used as a single document key, such as a
// userId or userKey placed after a path prefix.
func ValidKey(s string) bool {
	if s == "" || strings.ContainsAny(s, forbiddenKeyChars) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

// Truthy reports whether v would count as set in a loosely-typed document:
// non-empty strings, non-zero numbers, true, and any non-nil object or array.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case uint64:
		return t != 0
	default:
		return true
	}
}
