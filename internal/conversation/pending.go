package conversation

import "strings"

// pendingCorrection gates the next utterance so it is captured as the
// explanation for a disapproved action instead of a new command.
type pendingCorrection struct {
	turnID string
}

// Canonical yes/no token sets for the deletion confirmation round-trip.
// Anything outside both sets clears the pending state and is reprocessed
// as a normal command, so an unanswered question can never wedge the
// conversation.
var (
	affirmativeTokens = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "confirm": true,
	}
	negativeTokens = map[string]bool{
		"no": true, "n": true, "nope": true, "cancel": true,
	}
)

// normalizeAnswer reduces an utterance to a comparable confirmation token.
func normalizeAnswer(text string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!?, "))
}

// hasRequeryCue reports whether the utterance explicitly asks for a
// repeat ("show my todos again"), which resets suggestion memory.
func hasRequeryCue(text string) bool {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".!?,")
		if word == "again" || word == "repeat" {
			return true
		}
	}
	return false
}
