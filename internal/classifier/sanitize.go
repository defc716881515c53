package classifier

import (
	"regexp"
	"strings"
)

// The service occasionally leaks raw payload text into its prose field:
// fenced JSON blocks, or bare {"action": ...} fragments mid-sentence.
// Both are stripped before anything reaches the user.
var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\{.*?\\}\\s*```")
	payloadFragRe = regexp.MustCompile(`\{[^{}]*"action"\s*:[^{}]*\}`)
)

// markupReplacer drops the markdown control characters the service uses
// despite being asked for plain prose.
var markupReplacer = strings.NewReplacer(
	"**", "",
	"__", "",
	"*", "",
	"_", " ",
	"`", "",
	"#", "",
)

// CleanReply sanitizes a plain-text reply from the classification
// service. This is cosmetic recovery, not error handling: the text is
// shown to the user either way.
func CleanReply(s string) string {
	s = fencedBlockRe.ReplaceAllString(s, "")
	s = payloadFragRe.ReplaceAllString(s, "")
	s = markupReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
