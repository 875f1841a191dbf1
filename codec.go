package gmk

import (
	"encoding"
	"errors"
	"fmt"
	"strings"
)

// illegalNameChars are the bytes that can never appear in a make variable
// name: ASCII whitespace plus the characters make itself assigns meaning
// to in an assignment or reference.
const illegalNameChars = " \t\n\r\v\f:#=$()"

// ErrIllegalName is returned by variable operations given a name that is
// empty or contains a character from the illegal set.
var ErrIllegalName = errors.New("illegal variable name")

// IsLegalName reports whether name can safely be used as a make variable
// name. The empty string is not a legal name.
func IsLegalName(name string) bool {
	return name != "" && !strings.ContainsAny(name, illegalNameChars)
}

// checkName returns ErrIllegalName, annotated with the offending name,
// for names that fail IsLegalName.
func checkName(name string) error {
	if !IsLegalName(name) {
		return fmt.Errorf("%w: %q", ErrIllegalName, name)
	}
	return nil
}

// Escape makes s safe to embed inside a define/endef block while keeping
// dollar references expandable. A line starting with the endef keyword or
// a trailing backslash-newline would terminate the block early; both get
// a $() spacer, which make expands to nothing.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "endef", "$()endef")
	s = strings.ReplaceAll(s, "\\\n", "\\$()\n")
	return s
}

// EscapeAll escapes like Escape and then doubles every dollar sign, so
// make expands the result without substituting anything. The doubling
// runs last and covers the $() spacers too: an embedded endef comes back
// from expansion as "$()endef", not as the original text.
func EscapeAll(s string) string {
	s = Escape(s)
	s = strings.ReplaceAll(s, "$", "$$")
	return s
}

// encode converts a Go value for transmission to make. The boolean result
// is false when the value carries nothing at all: make distinguishes a
// null function result ("produced no value") from an empty string.
//
// The dispatch is closed: nil, bool, []byte, string, encoding.TextMarshaler,
// and a %v fallback for everything else. true encodes as "1". false and
// nil encode as no value. A TextMarshaler that fails also encodes as no
// value; conversion never fails outward.
func encode(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		if val {
			return "1", true
		}
		return "", false
	case []byte:
		return string(val), true
	case string:
		return val, true
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err != nil {
			return "", false
		}
		return string(text), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

// Display converts a Go value to the string form make sees. It follows
// the same dispatch as the transmit encoding but never signals "no
// value": nil and false display as the empty string.
func Display(v any) string {
	s, _ := encode(v)
	return s
}
