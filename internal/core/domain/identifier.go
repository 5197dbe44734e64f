package domain

import (
	"fmt"
	"regexp"
)

// identifierPattern is the allow-listed grammar for graph labels, relationship
// types, and property names that get spliced into query text. Anything outside
// it is rejected rather than escaped.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SanitizeIdentifier validates a label, relationship type, or property name
// before it is composed into dynamic query text. This is a security boundary:
// parameters cover values, but identifiers can only be spliced, so they must
// match a strict identifier grammar.
func SanitizeIdentifier(name, kind string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, kind, name)
	}
	return name, nil
}
