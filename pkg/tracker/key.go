// Package tracker holds the board logic that does not touch the database:
// project key derivation, issue order reconciliation, mention parsing and
// the participant checks shared by the handlers.
package tracker

import (
	"strconv"
	"strings"
)

const (
	keyBaseLen = 4
	keyMaxLen  = 6

	// KeyFallback is used when a project name contains no usable characters.
	KeyFallback = "PROJ"

	// KeyMaxAttempts bounds the uniqueness probe. The suffix scheme can
	// collide indefinitely once truncation folds different attempts onto
	// the same candidate, so give up at some point instead of spinning.
	KeyMaxAttempts = 1000
)

// KeyBase derives the key base from a project name: uppercase, strip
// everything outside [A-Z0-9], keep the first four characters.
func KeyBase(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == keyBaseLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return KeyFallback
	}
	return b.String()
}

// KeyCandidate returns the attempt-th candidate for a base: the base
// itself, then base+"1", base+"2", ... truncated to six characters.
func KeyCandidate(base string, attempt int) string {
	candidate := base
	if attempt > 0 {
		candidate += strconv.Itoa(attempt)
	}
	if len(candidate) > keyMaxLen {
		candidate = candidate[:keyMaxLen]
	}
	return candidate
}
