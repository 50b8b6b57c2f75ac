package plan

import (
	"unicode"
	"unicode/utf8"
)

// SetterName returns the exported method name for a field or alias.
func SetterName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// StorageName returns the unexported builder slot name for a field.
func StorageName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
