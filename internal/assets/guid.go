// Package assets defines the node and edge types of the Unity dependency
// graph: asset nodes keyed by GUID, and typed, strength-graded dependency
// edges between them.
//
// This package mirrors the role the teacher's entities package plays for a
// source-code graph, but the vocabulary here is Unity's: assets instead of
// code entities, dependency edges instead of call/inherit relationships, and
// a GUID instead of a synthesized entity ID.
package assets

import (
	"regexp"
	"strings"
)

// guidPattern matches a 32-character hex string in either case. Unity GUIDs
// are generated lowercase but some hand-edited or version-controlled .meta
// files carry mixed case; those are canonicalized, not rejected.
var guidPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// ValidGUID reports whether s is a 32-hex-character GUID, in any case.
func ValidGUID(s string) bool {
	return guidPattern.MatchString(s)
}

// NormalizeGUID lowercases a validated GUID. Callers must check ValidGUID (or
// check the returned ok) before trusting the result.
func NormalizeGUID(s string) (string, bool) {
	if !ValidGUID(s) {
		return "", false
	}
	return strings.ToLower(s), true
}
