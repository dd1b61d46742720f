package sentiment

import "strings"

// FilterByKeyword keeps only the sentences of text that contain keyword (case-insensitive) and
// joins them with a space. ok is false when no sentence matched, in which case text is returned
// unchanged.
func FilterByKeyword(text, keyword string) (filtered string, ok bool) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return text, true
	}

	sentences := sentenceRx.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	var kept []string
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), keyword) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return text, false
	}
	return strings.TrimSpace(strings.Join(kept, " ")), true
}

const snippetLimit = 1000

// Snippet truncates text to the stored history length, marking the cut with "...".
func Snippet(text string) string {
	r := []rune(text)
	if len(r) <= snippetLimit {
		return text
	}
	return string(r[:snippetLimit]) + "..."
}
