package tokenizer

import (
	"regexp"
	"strings"
)

// separatorRegex matches runs of non-word characters (anything but ASCII letters, digits and '_').
var separatorRegex = regexp.MustCompile(`\W+`)

// Split breaks text on runs of non-word characters and keeps the separators.
// Words sit at even positions and separators at odd positions, so a string
// that starts or ends with a separator yields an empty word at that end.
// For example, "org/tool-x" produces: "org", "/", "tool", "-", "x".
func Split(text string) []string {
	parts := make([]string, 0)
	last := 0
	for _, loc := range separatorRegex.FindAllStringIndex(text, -1) {
		parts = append(parts, text[last:loc[0]], text[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(parts, text[last:])
}

// Phrases returns every contiguous run of words from text, rejoined with the
// separators that were between them, skipping any run that contains a space.
// Each phrase is reported once, in order of first appearance.
// For example, "org/tool-x" produces: "org", "org/tool", "org/tool-x", "tool", "tool-x", "x".
func Phrases(text string) []string {
	parts := Split(text)

	result := make([]string, 0)
	seen := make(map[string]struct{})

	for start := 0; start < len(parts); start += 2 {
		var phrase strings.Builder
		for end := start; end < len(parts); end += 2 {
			if end > start {
				phrase.WriteString(parts[end-1])
			}
			phrase.WriteString(parts[end])

			s := phrase.String()
			if strings.Contains(s, " ") {
				// every longer run from this start contains the same space
				break
			}
			if s == "" {
				continue
			}
			if _, dup := seen[s]; !dup {
				seen[s] = struct{}{}
				result = append(result, s)
			}
		}
	}
	return result
}
