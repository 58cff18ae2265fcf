// Package keywords pulls normalized words out of post titles.
package keywords

import (
	"regexp"
	"strings"
)

// MaxPerText caps how many keywords one text contributes.
const MaxPerText = 20

var wordRe = regexp.MustCompile(`[\p{L}\p{N}']{3,32}`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {},
	"all": {}, "any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "have": {}, "his": {}, "how": {}, "its": {},
	"may": {}, "new": {}, "now": {}, "who": {}, "did": {}, "get": {}, "she": {},
	"use": {}, "this": {}, "that": {}, "with": {}, "from": {}, "they": {}, "will": {},
	"what": {}, "when": {}, "your": {}, "about": {}, "there": {}, "their": {},
	"which": {}, "would": {}, "been": {}, "were": {}, "than": {}, "then": {},
	"them": {}, "into": {}, "just": {}, "does": {}, "why": {}, "i'm": {},
}

// Extract returns the distinct lowercase words of text in first-seen order,
// skipping stop words.
func Extract(text string) []string {
	matches := wordRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(matches))

	for _, m := range matches {
		w := strings.Trim(strings.ToLower(m), "'")
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)

		if len(out) >= MaxPerText {
			break
		}
	}

	return out
}
