package service

import (
	"regexp"
	"strings"

	"pasariklan/pkg/errors"
)

// User and listing IDs are Firebase-style: URL-safe, no colon. That makes ":"
// a safe key separator that no identifier can contain.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

const keySeparator = ":"

// ValidIdentifier reports whether id is a syntactically valid participant or
// listing identifier.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// CanonicalConversationKey derives the order-independent identity of a
// two-party conversation. The two participant IDs are sorted before joining,
// so CanonicalConversationKey(a, b, s) == CanonicalConversationKey(b, a, s)
// for all valid inputs. When listingID is non-empty the key carries it as a
// trailing component, so the same pair gets a distinct conversation per
// listing; an empty listingID yields the pair-global key.
func CanonicalConversationKey(userA, userB, listingID string) (string, error) {
	if !ValidIdentifier(userA) || !ValidIdentifier(userB) {
		return "", errors.BadRequest("Invalid participant identifier", nil)
	}
	if userA == userB {
		return "", errors.BadRequest("Cannot start a conversation with yourself", nil)
	}
	if listingID != "" && !ValidIdentifier(listingID) {
		return "", errors.BadRequest("Invalid listing identifier", nil)
	}

	lo, hi := userA, userB
	if hi < lo {
		lo, hi = hi, lo
	}

	parts := []string{lo, hi}
	if listingID != "" {
		parts = append(parts, listingID)
	}

	return strings.Join(parts, keySeparator), nil
}

// SortedParticipants returns the pair in canonical (lexicographic) order.
func SortedParticipants(userA, userB string) []string {
	if userB < userA {
		return []string{userB, userA}
	}
	return []string{userA, userB}
}
