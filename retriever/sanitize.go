package retriever

import (
	"regexp"
	"strings"
)

// tagPattern matches element tags and comments. A '<' not followed by a letter, '/' or '!--' is text.
var tagPattern = regexp.MustCompile(`(?s)<!--.*?-->|</?[A-Za-z][^<>]*>`)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// SanitizeText strips tags, decodes the five core entities and trims whitespace.
// The steps repeat until the text stops changing, so SanitizeText(SanitizeText(s)) == SanitizeText(s).
// Every pass that changes the text also shortens it, so the loop ends.
func SanitizeText(s string) string {
	for {
		next := strings.TrimSpace(entityReplacer.Replace(tagPattern.ReplaceAllString(s, "")))
		if next == s {
			return s
		}
		s = next
	}
}
