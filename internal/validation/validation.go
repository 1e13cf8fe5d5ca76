// Package validation holds the input shape guards the transport edge applies
// before calling into the engines.
package validation

import (
	"regexp"
	"strings"
)

// MaxModelIDLength bounds caller-supplied model identifiers.
const MaxModelIDLength = 200

var modelIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-_./: ]+$`)

// IsValidModelID reports whether a model identifier is a non-empty string of
// at most MaxModelIDLength characters drawn from [A-Za-z0-9-_./: ].
func IsValidModelID(modelID string) bool {
	return modelID != "" &&
		len(modelID) <= MaxModelIDLength &&
		modelIDPattern.MatchString(modelID)
}

// IsValidSentence reports whether a sentence has analyzable content.
func IsValidSentence(sentence string) bool {
	return strings.TrimSpace(sentence) != ""
}

// IsValidMessage reports whether a conversation message has content.
func IsValidMessage(message string) bool {
	return strings.TrimSpace(message) != ""
}

// IsValidTopic reports whether a conversation topic is usable.
func IsValidTopic(topic string) bool {
	return strings.TrimSpace(topic) != ""
}
