package sentiment

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxTopics    = 5
	GeneralTopic = "General"
)

var topicWordRx = regexp.MustCompile(`\b[a-z]{3,}\b`)

// ExtractTopicScores scores each topic category by keyword hits and returns at most five
// categories with a positive score, highest first. Ties keep declaration order. Percentages are
// shares of the total matched score across all categories.
func ExtractTopicScores(text string) []TopicScore {
	if text == "" {
		return []TopicScore{}
	}

	counts := make(map[string]int)
	for _, w := range topicWordRx.FindAllString(strings.ToLower(text), -1) {
		counts[w]++
	}

	type scored struct {
		name  string
		score int
	}
	var matched []scored
	total := 0
	for _, c := range topicCategories {
		s := 0
		for _, kw := range c.Keywords {
			s += counts[kw]
		}
		total += s
		if s > 0 {
			matched = append(matched, scored{c.Name, s})
		}
	}

	if len(matched) == 0 {
		return []TopicScore{{Topic: GeneralTopic, Percentage: 100}}
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].score > matched[j].score })
	if len(matched) > maxTopics {
		matched = matched[:maxTopics]
	}

	out := make([]TopicScore, len(matched))
	for i, m := range matched {
		out[i] = TopicScore{
			Topic:      m.name,
			Percentage: round1(float64(m.score) / float64(total) * 100),
		}
	}
	return out
}

// ExtractTopics returns only the topic names of ExtractTopicScores.
func ExtractTopics(text string) []string {
	scores := ExtractTopicScores(text)
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Topic
	}
	return out
}
