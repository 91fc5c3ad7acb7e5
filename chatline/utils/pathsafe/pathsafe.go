// Package pathsafe strips anything from a client-supplied filename that
// could escape the content area. The ingress handlers receive names that
// already went through SecureFilename.
package pathsafe

import (
	"strings"
)

// SecureFilename reduces name to a flat, ASCII-safe filename: any directory
// components are dropped, spaces become underscores, and every rune outside
// [A-Za-z0-9._-] is removed. Leading and trailing dots and underscores are
// trimmed so the result can never be "." or "..". Returns "" when nothing
// safe remains.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// Ext returns the lowercased extension of name without the dot, or "" when
// the name has none.
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
