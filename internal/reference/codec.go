// Package reference encodes the correlation token that binds a checkout
// preference to a buyer identity and a plan. The token travels through the
// gateway as external_reference and is echoed back on payment notifications.
package reference

import (
	"errors"
	"net/url"
	"strings"
)

// Tag marks references created by the web checkout funnel. Sales reporting
// filters on it to exclude unrelated gateway traffic.
const Tag = "webpage-client"

const delimiter = "::"

// ErrIncomplete is returned when a token cannot be decoded into both fields.
var ErrIncomplete = errors.New("incomplete_reference")

// Reference is the decoded correlation token.
type Reference struct {
	Identity string
	PlanID   string
}

// Encode builds the external reference token. Identity and plan must not
// contain the delimiter; Decode is the exact inverse for such inputs.
func Encode(identity, planID string) string {
	return Tag + delimiter + identity + delimiter + planID
}

// Decode parses a token produced by Encode. It trims surrounding whitespace
// and tolerates percent-encoded tokens. A token that does not carry the tag
// and both fields yields ErrIncomplete, never a partial result.
func Decode(token string) (Reference, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Reference{}, ErrIncomplete
	}
	if decoded, err := url.PathUnescape(token); err == nil {
		token = strings.TrimSpace(decoded)
	}

	parts := strings.Split(token, delimiter)
	if len(parts) != 3 {
		return Reference{}, ErrIncomplete
	}
	identity := parts[1]
	planID := parts[2]
	if parts[0] != Tag || identity == "" || planID == "" {
		return Reference{}, ErrIncomplete
	}
	return Reference{Identity: identity, PlanID: planID}, nil
}
